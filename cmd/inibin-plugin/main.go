package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/twinfer/inibin-plugin/pkg/ibin"
	"github.com/twinfer/inibin-plugin/pkg/keymap"
)

const (
	metaKind   = "inibin_kind"
	metaXXHash = "inibin_xxhash"
	rawKind    = "raw"
	customKind = "custom"
)

// InibinProcessor is a Benthos processor that decodes inibin payloads into
// structured messages.
type InibinProcessor struct {
	config       InibinConfig
	parser       *ibin.Parser
	schemaMap    sync.Map // Cache for loaded schemas
	logger       *service.Logger
	mDecoded     *service.MetricCounter
	mErrors      *service.MetricCounter
	mCacheHits   *service.MetricCounter
	mCacheMisses *service.MetricCounter
}

// InibinConfig contains configuration parameters for the inibin processor.
type InibinConfig struct {
	Kind           string `json:"kind" yaml:"kind"`
	SchemaPath     string `json:"schema_path" yaml:"schema_path"`
	StringsPath    string `json:"strings_path" yaml:"strings_path"`
	StrictTrailer  bool   `json:"strict_trailer" yaml:"strict_trailer"`
	StringEncoding string `json:"string_encoding" yaml:"string_encoding"`
	Raw            bool   `json:"raw" yaml:"raw"`
}

func init() {
	// Register the processor with Benthos
	err := service.RegisterProcessor(
		"inibin",
		inibinProcessorConfig(),
		func(conf *service.ParsedConfig, mgr *service.Resources) (service.Processor, error) {
			return newInibinProcessorFromConfig(conf, mgr)
		},
	)
	if err != nil {
		panic(err)
	}
}

func main() {
	service.RunCLI(context.Background())
}

// inibinProcessorConfig returns a config spec for an inibin processor.
func inibinProcessorConfig() *service.ConfigSpec {
	return service.NewConfigSpec().
		Summary("Decodes inibin game-data files into structured messages.").
		Description("This processor decodes version 2 inibin payloads (optionally zlib-wrapped) and translates their hashed keys into named, nested fields using a bundled or YAML key map. Without a key map the flat key/value record is emitted.").
		Field(service.NewStringField("kind").
			Description("Bundled key map to translate with: champion (c) or ability (a).").
			Default("").
			Example("champion")).
		Field(service.NewStringField("schema_path").
			Description("Path to a YAML key map. Takes precedence over kind.").
			Default("").
			Example("./schemas/item.yaml")).
		Field(service.NewStringField("strings_path").
			Description("Path to a YAML mapping of raw strings to replacement text.").
			Default("")).
		Field(service.NewBoolField("strict_trailer").
			Description("Reject any byte after the last block, zero padding included.").
			Default(false)).
		Field(service.NewStringField("string_encoding").
			Description("Charset of string-table bytes, e.g. windows-1252. Empty means UTF-8.").
			Default("")).
		Field(service.NewBoolField("raw").
			Description("Emit the flat key/value record without translation.").
			Default(false)).
		Version("0.1.0")
}

// newInibinProcessorFromConfig creates a new InibinProcessor from a parsed config.
func newInibinProcessorFromConfig(conf *service.ParsedConfig, mgr *service.Resources) (*InibinProcessor, error) {
	var config InibinConfig
	var err error

	if config.Kind, err = conf.FieldString("kind"); err != nil {
		return nil, err
	}
	if config.SchemaPath, err = conf.FieldString("schema_path"); err != nil {
		return nil, err
	}
	if config.StringsPath, err = conf.FieldString("strings_path"); err != nil {
		return nil, err
	}
	if config.StrictTrailer, err = conf.FieldBool("strict_trailer"); err != nil {
		return nil, err
	}
	if config.StringEncoding, err = conf.FieldString("string_encoding"); err != nil {
		return nil, err
	}
	if config.Raw, err = conf.FieldBool("raw"); err != nil {
		return nil, err
	}

	if config.Kind != "" {
		canonical, ok := keymap.ResolveKind(config.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown kind: %s", config.Kind)
		}
		config.Kind = canonical
	}

	// Check if schema file exists
	if config.SchemaPath != "" {
		if _, err := os.Stat(config.SchemaPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found at path: %s", config.SchemaPath)
		}
	}

	var subs keymap.Substitutions
	if config.StringsPath != "" {
		if subs, err = ibin.LoadSubstitutions(config.StringsPath); err != nil {
			return nil, err
		}
	}

	parserOpts := []ibin.Option{
		ibin.WithStrictTrailer(config.StrictTrailer),
		ibin.WithStringEncoding(config.StringEncoding),
		ibin.WithSubstitutions(subs),
	}

	logger := mgr.Logger()
	metrics := mgr.Metrics()

	return &InibinProcessor{
		config:       config,
		parser:       ibin.NewParser(parserOpts...),
		logger:       logger,
		mDecoded:     metrics.NewCounter("inibin_decoded"),
		mErrors:      metrics.NewCounter("inibin_errors"),
		mCacheHits:   metrics.NewCounter("inibin_schema_cache_hits"),
		mCacheMisses: metrics.NewCounter("inibin_schema_cache_misses"),
	}, nil
}

// Process decodes and translates a single message.
func (p *InibinProcessor) Process(ctx context.Context, msg *service.Message) (service.MessageBatch, error) {
	p.logger.Debug("Decoding inibin payload")

	binData, err := msg.AsBytes()
	if err != nil {
		return p.fail(msg, fmt.Errorf("failed to get binary data from message: %w", err))
	}

	if len(binData) == 0 {
		p.logger.Warn("Empty binary data provided")
		p.mErrors.Incr(1)
		msg.SetError(errors.New("empty binary data provided"))
		return service.MessageBatch{msg}, nil
	}

	schema, err := p.loadSchema()
	if err != nil {
		return p.fail(msg, fmt.Errorf("failed to load schema: %w", err))
	}

	result, err := p.parser.ParseBinary(ctx, binData, ibin.WithSchema(schema))
	if err != nil {
		return p.fail(msg, fmt.Errorf("failed to decode inibin of size %d bytes: %w", len(binData), err))
	}

	p.logger.Debugf("Successfully decoded %d bytes of inibin data", len(binData))
	p.mDecoded.Incr(1)

	newMsg := service.NewMessage(nil)
	newMsg.SetStructured(result)

	// Copy metadata from original message
	_ = msg.MetaWalk(func(key, value string) error {
		newMsg.MetaSet(key, value)
		return nil
	})
	newMsg.MetaSet(metaKind, p.kindLabel())
	newMsg.MetaSet(metaXXHash, strconv.FormatUint(xxhash.Sum64(binData), 16))

	return service.MessageBatch{newMsg}, nil
}

func (p *InibinProcessor) fail(msg *service.Message, err error) (service.MessageBatch, error) {
	p.logger.Errorf("%v", err)
	p.mErrors.Incr(1)
	msg.SetError(err)
	return service.MessageBatch{msg}, nil
}

// kindLabel names the key map messages are translated with.
func (p *InibinProcessor) kindLabel() string {
	switch {
	case p.config.Raw:
		return rawKind
	case p.config.SchemaPath != "":
		return customKind
	case p.config.Kind != "":
		return p.config.Kind
	default:
		return rawKind
	}
}

// loadSchema returns the configured key map, or nil for raw output.
func (p *InibinProcessor) loadSchema() (keymap.Schema, error) {
	if p.config.Raw || (p.config.SchemaPath == "" && p.config.Kind == "") {
		return nil, nil
	}

	cacheKey := "kind:" + p.config.Kind
	if p.config.SchemaPath != "" {
		cacheKey = "path:" + p.config.SchemaPath
	}

	// Check schema cache first
	if cached, ok := p.schemaMap.Load(cacheKey); ok {
		p.logger.Tracef("Schema cache hit for %s", cacheKey)
		p.mCacheHits.Incr(1)
		return cached.(keymap.Schema), nil
	}

	p.logger.Debugf("Loading schema for %s", cacheKey)
	p.mCacheMisses.Incr(1)

	var schema keymap.Schema
	var err error
	if p.config.SchemaPath != "" {
		var loader *keymap.Loader
		if loader, err = keymap.NewLoader(); err != nil {
			return nil, err
		}
		schema, err = loader.LoadFile(p.config.SchemaPath)
	} else {
		schema, err = keymap.Builtin(p.config.Kind)
	}
	if err != nil {
		return nil, err
	}

	p.schemaMap.Store(cacheKey, schema)
	return schema, nil
}

// Close the processor resources
func (p *InibinProcessor) Close(ctx context.Context) error {
	p.logger.Debug("Closing inibin processor and clearing schema cache")
	p.schemaMap.Clear()
	p.parser.ClearCache()
	return nil
}
