package keymap

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/twinfer/inibin-plugin/pkg/inibin"
)

// Substitutions replaces decoded strings with readable text, e.g. the
// localized string a font config key stands for.
type Substitutions map[string]string

// TextDecoder converts raw string-table bytes to UTF-8.
type TextDecoder func(string) (string, error)

// Translator projects flat records onto schemas.
type Translator struct {
	subs   Substitutions
	decode TextDecoder
	logger *slog.Logger
}

// TranslatorOption configures a Translator
type TranslatorOption func(*Translator)

// WithSubstitutions sets the substitution table
func WithSubstitutions(subs Substitutions) TranslatorOption {
	return func(t *Translator) {
		t.subs = subs
	}
}

// WithTextDecoder decodes raw strings before numeric coercion
func WithTextDecoder(fn TextDecoder) TranslatorOption {
	return func(t *Translator) {
		t.decode = fn
	}
}

// WithTranslatorLogger sets a custom logger
func WithTranslatorLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a translator with the given options
func NewTranslator(opts ...TranslatorOption) *Translator {
	t := &Translator{}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// Translate walks schema and resolves each leaf against record. Missing
// keys and unimplemented fields become nil. subs may be nil.
func Translate(record inibin.Record, schema Schema, subs Substitutions) map[string]any {
	return NewTranslator(WithSubstitutions(subs)).Translate(record, schema)
}

// Translate walks schema and resolves each leaf against record. It never
// fails and never modifies record or schema.
func (t *Translator) Translate(record inibin.Record, schema Schema) map[string]any {
	out := make(map[string]any, len(schema))
	t.walk(record, schema, out)
	return out
}

func (t *Translator) walk(record inibin.Record, node Schema, out map[string]any) {
	for name, child := range node {
		switch n := child.(type) {
		case Schema:
			sub, ok := out[name].(map[string]any)
			if !ok {
				sub = make(map[string]any, len(n))
				out[name] = sub
			}
			t.walk(record, n, sub)
		case Key:
			out[name] = t.resolve(record, int32(n), nil)
		case KeyWithTransform:
			out[name] = t.resolve(record, n.Key, n.Transform)
		default:
			out[name] = nil
		}
	}
}

func (t *Translator) resolve(record inibin.Record, key int32, fn TransformFunc) any {
	v, ok := record[key]
	if !ok {
		return nil
	}

	if s, isString := v.(string); isString {
		if t.decode != nil {
			decoded, err := t.decode(s)
			if err != nil {
				t.logger.Debug("Keeping undecodable string", "key", key, "error", err)
			} else {
				s = decoded
			}
		}
		v = Coerce(s)
	}

	if s, isString := v.(string); isString {
		if sub, found := t.subs[s]; found {
			v = sub
		}
	}

	if fn != nil {
		v = fn(v)
	}
	return v
}

// Coerce parses s as an integer, else as a float, else returns s unchanged.
func Coerce(s string) any {
	trimmed := strings.TrimSpace(s)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return s
}

func sortedNames(s Schema) []string {
	return slices.Sorted(maps.Keys(s))
}
