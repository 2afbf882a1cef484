package keymap

// Node is one entry of a schema tree: Key, KeyWithTransform, Schema or
// Unimplemented.
type Node interface {
	node()
}

// Key maps a field straight to a record key.
type Key int32

// KeyWithTransform maps a field to a record key and post-processes the
// value. Name identifies the transform in diagnostics.
type KeyWithTransform struct {
	Key       int32
	Transform TransformFunc
	Name      string
}

// Unimplemented marks a field whose key is not known yet; it always
// translates to nil.
type Unimplemented struct{}

// Schema maps readable field names to nodes. A Schema is itself a Node, so
// schemas nest.
type Schema map[string]Node

func (Key) node()              {}
func (KeyWithTransform) node() {}
func (Unimplemented) node()    {}
func (Schema) node()           {}

// TransformFunc is a pure function applied to a resolved value.
type TransformFunc func(any) any

// Keys returns every record key the schema references, ordered by field
// name at each level.
func (s Schema) Keys() []int32 {
	var keys []int32
	var walk func(Schema)
	walk = func(n Schema) {
		for _, name := range sortedNames(n) {
			switch v := n[name].(type) {
			case Key:
				keys = append(keys, int32(v))
			case KeyWithTransform:
				keys = append(keys, v.Key)
			case Schema:
				walk(v)
			}
		}
	}
	walk(s)
	return keys
}
