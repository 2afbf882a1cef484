package inibin

import (
	"encoding/binary"
	"io"
	"log/slog"
	"math"
)

// fileBuilder assembles little-endian inibin fixtures.
type fileBuilder struct {
	buf []byte
}

func newFile(strLen, flags uint16) *fileBuilder {
	b := &fileBuilder{}
	return b.u8(Version).u16(strLen).u16(flags)
}

func (b *fileBuilder) u8(v uint8) *fileBuilder {
	b.buf = append(b.buf, v)
	return b
}

func (b *fileBuilder) s8(v int8) *fileBuilder { return b.u8(uint8(v)) }

func (b *fileBuilder) u16(v uint16) *fileBuilder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *fileBuilder) s16(v int16) *fileBuilder { return b.u16(uint16(v)) }

func (b *fileBuilder) i32(v int32) *fileBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(v))
	return b
}

func (b *fileBuilder) f32(v float32) *fileBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
	return b
}

func (b *fileBuilder) raw(p ...byte) *fileBuilder {
	b.buf = append(b.buf, p...)
	return b
}

// keys writes a key count followed by the keys.
func (b *fileBuilder) keys(keys ...int32) *fileBuilder {
	b.u16(uint16(len(keys)))
	for _, k := range keys {
		b.i32(k)
	}
	return b
}

func (b *fileBuilder) bytes() []byte { return b.buf }

func quietDecoder(opts ...Option) *Decoder {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDecoder(append([]Option{WithLogger(logger)}, opts...)...)
}
