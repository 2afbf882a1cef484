package keymap

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	internalCel "github.com/twinfer/inibin-plugin/internal/cel"
)

// Loader parses YAML schema files. A leaf is an integer key, `~` for an
// unimplemented field, or a mapping with `key` and at most one of
// `transform` (a registered name) or `expr` (a CEL expression over x).
// Any other mapping is a nested schema.
type Loader struct {
	registry *TransformRegistry
	pool     *internalCel.ExpressionPool
	logger   *slog.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithRegistry sets the named transform registry
func WithRegistry(r *TransformRegistry) LoaderOption {
	return func(l *Loader) {
		l.registry = r
	}
}

// WithExpressionPool shares a compiled expression pool between loaders
func WithExpressionPool(p *internalCel.ExpressionPool) LoaderOption {
	return func(l *Loader) {
		l.pool = p
	}
}

// WithLoaderLogger sets a custom logger
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a schema loader with the given options
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.registry == nil {
		l.registry = NewTransformRegistry()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.pool == nil {
		pool, err := internalCel.NewExpressionPool()
		if err != nil {
			return nil, fmt.Errorf("creating expression pool: %w", err)
		}
		l.pool = pool
	}
	return l, nil
}

// LoadFile reads and parses a schema file
func (l *Loader) LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	schema, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	return schema, nil
}

// Load parses a YAML schema document
func (l *Loader) Load(data []byte) (Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty schema document")
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("schema root must be a mapping, got %s", kindName(root.Kind))
	}
	return l.parseSchema(root, "")
}

func (l *Loader) parseSchema(n *yaml.Node, path string) (Schema, error) {
	schema := make(Schema, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		field := joinPath(path, name)
		if _, dup := schema[name]; dup {
			return nil, fmt.Errorf("field %s defined twice (line %d)", field, n.Content[i].Line)
		}
		child, err := l.parseNode(n.Content[i+1], field)
		if err != nil {
			return nil, err
		}
		schema[name] = child
	}
	return schema, nil
}

func (l *Loader) parseNode(n *yaml.Node, path string) (Node, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return Unimplemented{}, nil
		case "!!int":
			var key int32
			if err := n.Decode(&key); err != nil {
				return nil, fmt.Errorf("field %s: %w", path, err)
			}
			return Key(key), nil
		default:
			return nil, fmt.Errorf("field %s: expected an integer key, got %q (line %d)", path, n.Value, n.Line)
		}

	case yaml.MappingNode:
		if isLeaf(n) {
			return l.parseLeaf(n, path)
		}
		return l.parseSchema(n, path)

	default:
		return nil, fmt.Errorf("field %s: unexpected %s (line %d)", path, kindName(n.Kind), n.Line)
	}
}

type leafDef struct {
	Key       *int32 `yaml:"key"`
	Transform string `yaml:"transform"`
	Expr      string `yaml:"expr"`
}

func (l *Loader) parseLeaf(n *yaml.Node, path string) (Node, error) {
	var def leafDef
	if err := n.Decode(&def); err != nil {
		return nil, fmt.Errorf("field %s: %w", path, err)
	}
	if def.Key == nil {
		return Unimplemented{}, nil
	}

	switch {
	case def.Transform != "" && def.Expr != "":
		return nil, fmt.Errorf("field %s: transform and expr are mutually exclusive", path)

	case def.Transform != "":
		fn, ok := l.registry.Get(def.Transform)
		if !ok {
			return nil, fmt.Errorf("field %s: unknown transform %q", path, def.Transform)
		}
		return KeyWithTransform{Key: *def.Key, Transform: fn, Name: def.Transform}, nil

	case def.Expr != "":
		fn, err := l.pool.Func(def.Expr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", path, err)
		}
		logger, expr := l.logger, def.Expr
		transform := func(v any) any {
			out, err := fn(v)
			if err != nil {
				logger.Debug("Transform expression failed", "field", path, "expr", expr, "error", err)
				return nil
			}
			return out
		}
		return KeyWithTransform{Key: *def.Key, Transform: transform, Name: def.Expr}, nil

	default:
		return Key(*def.Key), nil
	}
}

// isLeaf reports whether a mapping is a leaf definition rather than a
// nested schema.
func isLeaf(n *yaml.Node) bool {
	hasKey := false
	for i := 0; i < len(n.Content); i += 2 {
		switch n.Content[i].Value {
		case "key":
			hasKey = true
		case "transform", "expr":
		default:
			return false
		}
	}
	return hasKey
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "empty node"
	}
}
