package inibin

import (
	"bytes"
	"fmt"
	"io"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
)

// Kind identifies a fixed-width little-endian scalar encoding.
type Kind uint8

const (
	KindU8 Kind = iota + 1
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindF32
)

// Size returns the encoded width in bytes, or 0 for an unknown kind.
func (k Kind) Size() int {
	switch k {
	case KindU8, KindS8:
		return 1
	case KindU16, KindS16:
		return 2
	case KindU32, KindS32, KindF32:
		return 4
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u1"
	case KindS8:
		return "s1"
	case KindU16:
		return "u2le"
	case KindS16:
		return "s2le"
	case KindU32:
		return "u4le"
	case KindS32:
		return "s4le"
	case KindF32:
		return "f4le"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Cursor is a forward-only reader over an in-memory buffer. Every read is
// bounds-checked before it reaches the underlying stream, so running out of
// data always yields ErrUnexpectedEOF.
type Cursor struct {
	stream *kaitai.Stream
	size   int64
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{
		stream: kaitai.NewStream(bytes.NewReader(data)),
		size:   int64(len(data)),
	}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int64 {
	pos, err := c.stream.Pos()
	if err != nil {
		return c.size
	}
	return pos
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int {
	return int(c.size - c.Pos())
}

func (c *Cursor) need(n int) error {
	left := c.Len()
	if n < 0 || n > left {
		return fmt.Errorf("%w: need %d bytes at offset %d, %d remain", ErrUnexpectedEOF, n, c.Pos(), left)
	}
	return nil
}

// ReadExact returns the next n bytes.
func (c *Cursor) ReadExact(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	return c.stream.ReadBytes(n)
}

// ReadScalar reads one value of the given kind. Integers keep their Go
// width (uint8, int16, ...); KindF32 yields a float32.
func (c *Cursor) ReadScalar(kind Kind) (any, error) {
	size := kind.Size()
	if size == 0 {
		return nil, fmt.Errorf("unknown scalar kind %d", uint8(kind))
	}
	if err := c.need(size); err != nil {
		return nil, err
	}

	switch kind {
	case KindU8:
		return c.stream.ReadU1()
	case KindS8:
		return c.stream.ReadS1()
	case KindU16:
		return c.stream.ReadU2le()
	case KindS16:
		return c.stream.ReadS2le()
	case KindU32:
		return c.stream.ReadU4le()
	case KindS32:
		return c.stream.ReadS4le()
	default:
		return c.stream.ReadF4le()
	}
}

// ReadScalars reads count contiguous values of the given kind.
func (c *Cursor) ReadScalars(kind Kind, count int) ([]any, error) {
	if err := c.need(kind.Size() * count); err != nil {
		return nil, err
	}
	values := make([]any, 0, count)
	for range count {
		v, err := c.ReadScalar(kind)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Remaining returns every unread byte without advancing the cursor.
func (c *Cursor) Remaining() ([]byte, error) {
	pos := c.Pos()
	if pos >= c.size {
		return nil, nil
	}
	rest, err := c.stream.ReadBytesFull()
	if err != nil {
		return nil, fmt.Errorf("reading remainder: %w", err)
	}
	if _, err := c.stream.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding cursor: %w", err)
	}
	return rest, nil
}

func (c *Cursor) readCount() (int, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	n, err := c.stream.ReadU2le()
	return int(n), err
}

func (c *Cursor) readKeys(count int) ([]int32, error) {
	if err := c.need(4 * count); err != nil {
		return nil, err
	}
	keys := make([]int32, count)
	for i := range keys {
		k, err := c.stream.ReadS4le()
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}
