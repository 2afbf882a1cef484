package inibin

import (
	"fmt"
	"math/bits"
	"slices"
)

// Encoding describes how the values of a block are laid out. It is one of
// Scalar, Group, Custom or StringTable.
type Encoding interface {
	encoding()
}

// Scalar stores one fixed-width value per key.
type Scalar struct {
	Kind Kind
}

// Group stores Size fixed-width values per key.
type Group struct {
	Kind Kind
	Size int
}

// Custom decodes a non-uniform layout. Read must consume the values for
// count keys and return exactly count values.
type Custom struct {
	Read ReadFunc
}

// StringTable marks the block holding string offsets into the trailing
// string region.
type StringTable struct{}

func (Scalar) encoding()      {}
func (Group) encoding()       {}
func (Custom) encoding()      {}
func (StringTable) encoding() {}

// ReadFunc decodes the values of a block with a custom layout.
type ReadFunc func(c *Cursor, count int) ([]any, error)

// Transform maps a decoded scalar to its final value.
type Transform func(any) any

// Descriptor defines one block of the format.
type Descriptor struct {
	Bit        uint16
	Name       string
	Encoding   Encoding
	Transforms []Transform // applied to each scalar, in order
}

// Catalog is an ordered, immutable set of block descriptors. Order is the
// on-disk block order.
type Catalog struct {
	blocks     []block
	recognized uint16
	strings    *Descriptor
}

type block struct {
	Descriptor
	read ReadFunc
}

// NewCatalog validates the descriptors and resolves each encoding into a
// reader. Bits must be single and unique, and exactly one descriptor, the
// one with the highest bit, must be the string table.
func NewCatalog(descs ...Descriptor) (*Catalog, error) {
	cat := &Catalog{}
	for i := range descs {
		d := descs[i]
		if bits.OnesCount16(d.Bit) != 1 {
			return nil, fmt.Errorf("descriptor %q: bit %#06x is not a single bit", d.Name, d.Bit)
		}
		if cat.recognized&d.Bit != 0 {
			return nil, fmt.Errorf("descriptor %q: bit %#06x already used", d.Name, d.Bit)
		}
		cat.recognized |= d.Bit

		if _, ok := d.Encoding.(StringTable); ok {
			if cat.strings != nil {
				return nil, fmt.Errorf("descriptor %q: second string table", d.Name)
			}
			cat.strings = &d
			continue
		}

		read, err := resolve(d)
		if err != nil {
			return nil, fmt.Errorf("descriptor %q: %w", d.Name, err)
		}
		cat.blocks = append(cat.blocks, block{Descriptor: d, read: read})
	}

	if cat.strings == nil {
		return nil, fmt.Errorf("catalog has no string table descriptor")
	}
	if cat.recognized>>bits.TrailingZeros16(cat.strings.Bit) != 1 {
		return nil, fmt.Errorf("string table bit %#06x is not the highest recognized bit", cat.strings.Bit)
	}
	return cat, nil
}

// MustCatalog is like NewCatalog but panics on an invalid catalog.
func MustCatalog(descs ...Descriptor) *Catalog {
	cat, err := NewCatalog(descs...)
	if err != nil {
		panic(err)
	}
	return cat
}

// Recognized returns the union of all descriptor bits.
func (c *Catalog) Recognized() uint16 { return c.recognized }

// Descriptors returns the descriptors in on-disk order, string table last.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(c.blocks)+1)
	for _, b := range c.blocks {
		out = append(out, b.Descriptor)
	}
	return append(out, *c.strings)
}

func resolve(d Descriptor) (ReadFunc, error) {
	switch enc := d.Encoding.(type) {
	case Scalar:
		if enc.Kind.Size() == 0 {
			return nil, fmt.Errorf("unknown scalar kind %d", uint8(enc.Kind))
		}
		transforms := slices.Clone(d.Transforms)
		return func(c *Cursor, count int) ([]any, error) {
			values, err := c.ReadScalars(enc.Kind, count)
			if err != nil {
				return nil, err
			}
			return applyTransforms(values, transforms), nil
		}, nil

	case Group:
		if enc.Kind.Size() == 0 {
			return nil, fmt.Errorf("unknown scalar kind %d", uint8(enc.Kind))
		}
		if enc.Size < 1 {
			return nil, fmt.Errorf("group size %d must be positive", enc.Size)
		}
		transforms := slices.Clone(d.Transforms)
		return func(c *Cursor, count int) ([]any, error) {
			values, err := c.ReadScalars(enc.Kind, enc.Size*count)
			if err != nil {
				return nil, err
			}
			return groupValues(applyTransforms(values, transforms), enc.Size), nil
		}, nil

	case Custom:
		if enc.Read == nil {
			return nil, fmt.Errorf("custom encoding without a reader")
		}
		if len(d.Transforms) > 0 {
			return nil, fmt.Errorf("transforms need a fixed-width encoding")
		}
		return enc.Read, nil

	default:
		return nil, fmt.Errorf("unsupported encoding %T", d.Encoding)
	}
}

func applyTransforms(values []any, transforms []Transform) []any {
	for _, fn := range transforms {
		for i, v := range values {
			values[i] = fn(v)
		}
	}
	return values
}

// groupValues splits values into consecutive runs of size. A size of 1
// leaves the slice untouched.
func groupValues(values []any, size int) []any {
	if size == 1 {
		return values
	}
	groups := make([]any, 0, len(values)/size)
	for chunk := range slices.Chunk(values, size) {
		groups = append(groups, chunk)
	}
	return groups
}

// DivideByTen turns a packed tenths byte into its float value.
func DivideByTen(v any) any {
	if b, ok := v.(int8); ok {
		return float64(b) / 10
	}
	return v
}

// The signedness of several encodings is not confirmed by real files; they
// match the historical reader bit for bit.
var defaultCatalog = MustCatalog(
	Descriptor{Bit: 1 << 0, Name: "int32", Encoding: Scalar{Kind: KindS32}},
	Descriptor{Bit: 1 << 1, Name: "float32", Encoding: Scalar{Kind: KindF32}},
	Descriptor{Bit: 1 << 2, Name: "tenths", Encoding: Scalar{Kind: KindS8}, Transforms: []Transform{DivideByTen}},
	Descriptor{Bit: 1 << 3, Name: "int16", Encoding: Scalar{Kind: KindS16}},
	Descriptor{Bit: 1 << 4, Name: "int8", Encoding: Scalar{Kind: KindS8}},
	Descriptor{Bit: 1 << 5, Name: "bools", Encoding: Custom{Read: readBools}},
	Descriptor{Bit: 1 << 6, Name: "int8x3", Encoding: Group{Kind: KindS8, Size: 3}},
	Descriptor{Bit: 1 << 7, Name: "int32x3", Encoding: Group{Kind: KindS32, Size: 3}},
	Descriptor{Bit: 1 << 10, Name: "int8x4", Encoding: Group{Kind: KindS8, Size: 4}},
	Descriptor{Bit: 1 << 12, Name: "strings", Encoding: StringTable{}},
)

// DefaultCatalog returns the block catalog of format version 2.
func DefaultCatalog() *Catalog { return defaultCatalog }
