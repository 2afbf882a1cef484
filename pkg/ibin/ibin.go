package ibin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"

	"github.com/twinfer/inibin-plugin/pkg/inibin"
	"github.com/twinfer/inibin-plugin/pkg/keymap"
)

// Parser wraps decoding and translation with schema caching and configuration
type Parser struct {
	schemaCache map[string]keymap.Schema
	cacheMutex  sync.RWMutex
	logger      *slog.Logger
	options     options
	loader      func() (*keymap.Loader, error)
}

// options holds configuration for the parser
type options struct {
	kind           string
	schema         keymap.Schema
	schemaPath     string
	substitutions  keymap.Substitutions
	stringEncoding string
	strictTrailer  bool
	logger         *slog.Logger
	enableCaching  bool
	debugMode      bool
}

// Option is a function that configures parser options
type Option func(*options)

// WithKind translates with the bundled schema for kind (champion, ability)
func WithKind(kind string) Option {
	return func(o *options) {
		o.kind = kind
	}
}

// WithSchema translates with an explicit schema. It takes precedence over
// WithSchemaPath and WithKind.
func WithSchema(schema keymap.Schema) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// WithSchemaPath translates with a schema loaded from a YAML file
func WithSchemaPath(path string) Option {
	return func(o *options) {
		o.schemaPath = path
	}
}

// WithRaw disables translation, overriding earlier schema options
func WithRaw() Option {
	return func(o *options) {
		o.kind = ""
		o.schema = nil
		o.schemaPath = ""
	}
}

// WithSubstitutions sets the string substitution table
func WithSubstitutions(subs keymap.Substitutions) Option {
	return func(o *options) {
		o.substitutions = subs
	}
}

// WithStringEncoding decodes string-table bytes from the named charset
// (e.g. "windows-1252") before coercion. Empty means UTF-8.
func WithStringEncoding(name string) Option {
	return func(o *options) {
		o.stringEncoding = name
	}
}

// WithStrictTrailer rejects any byte after the last block, padding included
func WithStrictTrailer(strict bool) Option {
	return func(o *options) {
		o.strictTrailer = strict
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCaching enables or disables caching of schemas loaded from files
func WithCaching(enabled bool) Option {
	return func(o *options) {
		o.enableCaching = enabled
	}
}

// WithDebugMode enables debug logging
func WithDebugMode(enabled bool) Option {
	return func(o *options) {
		o.debugMode = enabled
	}
}

// defaultOptions returns the default configuration
func defaultOptions() options {
	return options{
		logger:        slog.Default(),
		enableCaching: true,
	}
}

// Global parser instance for convenience functions
var globalParser *Parser
var globalParserOnce sync.Once

// getGlobalParser returns a singleton parser instance
func getGlobalParser() *Parser {
	globalParserOnce.Do(func() {
		globalParser = NewParser()
	})
	return globalParser
}

// NewParser creates a new parser instance with the given options
func NewParser(opts ...Option) *Parser {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if options.debugMode {
		options.logger = options.logger.With("debug", true)
	}

	logger := options.logger
	return &Parser{
		schemaCache: make(map[string]keymap.Schema),
		logger:      logger,
		options:     options,
		loader: sync.OnceValues(func() (*keymap.Loader, error) {
			return keymap.NewLoader(keymap.WithLoaderLogger(logger))
		}),
	}
}

// ParseBinary decodes and translates data with the global parser
func ParseBinary(data []byte, opts ...Option) (map[string]any, error) {
	return getGlobalParser().ParseBinary(context.Background(), data, opts...)
}

// ParseBinaryWithContext decodes and translates data with the global parser and a context
func ParseBinaryWithContext(ctx context.Context, data []byte, opts ...Option) (map[string]any, error) {
	return getGlobalParser().ParseBinary(ctx, data, opts...)
}

// SerializeToJSON decodes and translates data, then converts it to JSON
func SerializeToJSON(data []byte, opts ...Option) ([]byte, error) {
	return getGlobalParser().SerializeToJSON(context.Background(), data, opts...)
}

// DecodeRecord decodes data into a flat record with the global parser
func DecodeRecord(data []byte, opts ...Option) (inibin.Record, error) {
	return getGlobalParser().DecodeRecord(context.Background(), data, opts...)
}

// DecodeRecord decodes data into a flat record. zlib-wrapped payloads, as
// stored in game archives, are inflated first.
func (p *Parser) DecodeRecord(ctx context.Context, data []byte, opts ...Option) (inibin.Record, error) {
	options := p.apply(opts)

	if isZlib(data) {
		inflated, err := inflate(data)
		if err != nil {
			return nil, fmt.Errorf("inflating payload: %w", err)
		}
		p.logger.DebugContext(ctx, "Inflated zlib payload", "compressed", len(data), "size", len(inflated))
		data = inflated
	}

	decoder := inibin.NewDecoder(
		inibin.WithLogger(p.logger),
		inibin.WithStrictTrailer(options.strictTrailer),
	)
	record, err := decoder.Decode(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("decoding inibin: %w", err)
	}
	return record, nil
}

// ParseBinary decodes data and translates it with the configured schema.
// Without a schema the flat record is returned keyed by decimal key.
func (p *Parser) ParseBinary(ctx context.Context, data []byte, opts ...Option) (map[string]any, error) {
	options := p.apply(opts)

	// Resolve the schema before decoding so configuration errors surface first
	schema, err := p.resolveSchema(options)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	record, err := p.DecodeRecord(ctx, data, opts...)
	if err != nil {
		return nil, err
	}

	if schema == nil {
		return record.StringKeyed(), nil
	}

	translatorOpts := []keymap.TranslatorOption{
		keymap.WithSubstitutions(options.substitutions),
		keymap.WithTranslatorLogger(p.logger),
	}
	if options.stringEncoding != "" {
		decode, err := textDecoder(options.stringEncoding)
		if err != nil {
			return nil, err
		}
		translatorOpts = append(translatorOpts, keymap.WithTextDecoder(decode))
	}

	result := keymap.NewTranslator(translatorOpts...).Translate(record, schema)
	p.logger.DebugContext(ctx, "Translated inibin", "keys", len(record), "fields", len(result))
	return result, nil
}

// SerializeToJSON decodes and translates data, then converts it to JSON
func (p *Parser) SerializeToJSON(ctx context.Context, data []byte, opts ...Option) ([]byte, error) {
	result, err := p.ParseBinary(ctx, data, opts...)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling to JSON: %w", err)
	}

	return jsonData, nil
}

// ValidateSchema loads a schema file without decoding any data
func (p *Parser) ValidateSchema(schemaPath string) error {
	_, err := p.loadSchema(schemaPath)
	return err
}

// ValidateSchema loads a schema file with the global parser
func ValidateSchema(schemaPath string) error {
	return getGlobalParser().ValidateSchema(schemaPath)
}

// ClearCache clears the schema cache
func (p *Parser) ClearCache() {
	p.cacheMutex.Lock()
	defer p.cacheMutex.Unlock()
	p.schemaCache = make(map[string]keymap.Schema)
}

func (p *Parser) apply(opts []Option) options {
	options := p.options
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// resolveSchema picks the schema in order: explicit, file, bundled kind.
// A nil schema with a nil error means raw output.
func (p *Parser) resolveSchema(o options) (keymap.Schema, error) {
	switch {
	case o.schema != nil:
		return o.schema, nil
	case o.schemaPath != "":
		return p.loadSchema(o.schemaPath)
	case o.kind != "":
		return keymap.Builtin(o.kind)
	default:
		return nil, nil
	}
}

// loadSchema loads a schema from disk with caching support
func (p *Parser) loadSchema(schemaPath string) (keymap.Schema, error) {
	if p.options.enableCaching {
		p.cacheMutex.RLock()
		cached, exists := p.schemaCache[schemaPath]
		p.cacheMutex.RUnlock()
		if exists {
			return cached, nil
		}
	}

	loader, err := p.loader()
	if err != nil {
		return nil, err
	}
	schema, err := loader.LoadFile(schemaPath)
	if err != nil {
		return nil, err
	}

	if p.options.enableCaching {
		p.cacheMutex.Lock()
		p.schemaCache[schemaPath] = schema
		p.cacheMutex.Unlock()
	}

	return schema, nil
}

// LoadSubstitutions reads a YAML mapping of raw strings to replacement text
func LoadSubstitutions(path string) (keymap.Substitutions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading substitutions file: %w", err)
	}
	return ParseSubstitutions(data)
}

// ParseSubstitutions parses a YAML mapping of raw strings to replacement text
func ParseSubstitutions(data []byte) (keymap.Substitutions, error) {
	subs := keymap.Substitutions{}
	if err := yaml.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parsing substitutions: %w", err)
	}
	return subs, nil
}

// isZlib reports whether data starts with a zlib header. An inibin starts
// with its version byte, which never looks like one.
func isZlib(data []byte) bool {
	if len(data) < 2 || data[0]&0x0F != 8 || data[0]>>4 > 7 {
		return false
	}
	return (uint16(data[0])<<8|uint16(data[1]))%31 == 0
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func textDecoder(name string) (keymap.TextDecoder, error) {
	if strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown string encoding %q: %w", name, err)
	}
	return func(s string) (string, error) {
		return enc.NewDecoder().String(s)
	}, nil
}
