package inibin

import (
	"context"
	"fmt"
	"log/slog"
)

// Version is the only inibin format version this package decodes.
const Version = 2

// Header is the fixed prefix of an inibin file.
type Header struct {
	Version           uint8
	StringTableLength uint16
	Flags             uint16
}

// TrailerPolicy controls what may follow the last block.
type TrailerPolicy int

const (
	// TrailerZeroPadding accepts trailing bytes as long as all are zero.
	TrailerZeroPadding TrailerPolicy = iota
	// TrailerStrict rejects any trailing byte.
	TrailerStrict
)

func (p TrailerPolicy) String() string {
	if p == TrailerStrict {
		return "strict"
	}
	return "zero-padding"
}

// Decoder decodes inibin buffers into records.
type Decoder struct {
	catalog *Catalog
	logger  *slog.Logger
	trailer TrailerPolicy
}

// options holds configuration for the decoder
type options struct {
	catalog *Catalog
	logger  *slog.Logger
	trailer TrailerPolicy
}

// Option is a function that configures decoder options
type Option func(*options)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTrailerPolicy sets how trailing bytes are treated
func WithTrailerPolicy(p TrailerPolicy) Option {
	return func(o *options) {
		o.trailer = p
	}
}

// WithStrictTrailer rejects any trailing byte, zero or not, when enabled
func WithStrictTrailer(strict bool) Option {
	return func(o *options) {
		if strict {
			o.trailer = TrailerStrict
		} else {
			o.trailer = TrailerZeroPadding
		}
	}
}

// WithCatalog replaces the default block catalog
func WithCatalog(c *Catalog) Option {
	return func(o *options) {
		o.catalog = c
	}
}

// NewDecoder creates a decoder with the given options
func NewDecoder(opts ...Option) *Decoder {
	o := options{catalog: defaultCatalog}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.catalog == nil {
		o.catalog = defaultCatalog
	}
	return &Decoder{catalog: o.catalog, logger: o.logger, trailer: o.trailer}
}

// Decode decodes data with the default decoder.
func Decode(data []byte) (Record, error) {
	return NewDecoder().Decode(context.Background(), data)
}

type state uint8

const (
	stateReadingHeader state = iota
	stateValidatingFlags
	stateDecodingBlocks
	stateResolvingStringTable
	stateValidatingTrailer
	stateDone
)

func (s state) String() string {
	switch s {
	case stateReadingHeader:
		return "reading header"
	case stateValidatingFlags:
		return "validating flags"
	case stateDecodingBlocks:
		return "decoding blocks"
	case stateResolvingStringTable:
		return "resolving string table"
	case stateValidatingTrailer:
		return "validating trailer"
	default:
		return "done"
	}
}

// decodeRun is the state of one Decode call.
type decodeRun struct {
	*Decoder
	cur    *Cursor
	header Header
	record Record
	block  int // next catalog block in stateDecodingBlocks
}

// Decode decodes a complete inibin buffer. On error no record is returned.
func (d *Decoder) Decode(ctx context.Context, data []byte) (Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "Starting inibin decode", "size", len(data), "trailer_policy", d.trailer)

	run := &decodeRun{
		Decoder: d,
		cur:     NewCursor(data),
		record:  make(Record),
	}
	st := stateReadingHeader
	for st != stateDone {
		next, err := run.step(ctx, st)
		if err != nil {
			d.logger.DebugContext(ctx, "inibin decode failed", "state", st.String(), "offset", run.cur.Pos(), "error", err)
			return nil, fmt.Errorf("%s: %w", st, err)
		}
		st = next
	}

	d.logger.DebugContext(ctx, "Finished inibin decode", "keys", len(run.record), "flags", run.header.Flags)
	return run.record, nil
}

func (r *decodeRun) step(ctx context.Context, st state) (state, error) {
	switch st {
	case stateReadingHeader:
		return stateValidatingFlags, r.readHeader()

	case stateValidatingFlags:
		if extra := r.header.Flags &^ r.catalog.recognized; extra != 0 {
			return st, &FlagsError{Flags: extra}
		}
		return stateDecodingBlocks, nil

	case stateDecodingBlocks:
		for r.block < len(r.catalog.blocks) {
			b := &r.catalog.blocks[r.block]
			r.block++
			if r.header.Flags&b.Bit == 0 {
				continue
			}
			return st, r.decodeBlock(ctx, b)
		}
		return stateResolvingStringTable, nil

	case stateResolvingStringTable:
		strings := r.catalog.strings
		if r.header.Flags&strings.Bit == 0 {
			return stateValidatingTrailer, nil
		}
		keys, values, err := readStringTable(r.cur, int(r.header.StringTableLength))
		if err != nil {
			return st, fmt.Errorf("block %s: %w", strings.Name, err)
		}
		r.logger.DebugContext(ctx, "Resolved string table", "keys", len(keys), "region", r.header.StringTableLength)
		return stateValidatingTrailer, r.record.merge(strings.Name, keys, values)

	case stateValidatingTrailer:
		return stateDone, r.validateTrailer()

	default:
		return stateDone, nil
	}
}

func (r *decodeRun) readHeader() error {
	v, err := r.cur.ReadScalar(KindU8)
	if err != nil {
		return err
	}
	r.header.Version = v.(uint8)
	if r.header.Version != Version {
		return &VersionError{Version: r.header.Version}
	}

	n, err := r.cur.ReadScalar(KindU16)
	if err != nil {
		return err
	}
	r.header.StringTableLength = n.(uint16)

	f, err := r.cur.ReadScalar(KindU16)
	if err != nil {
		return err
	}
	r.header.Flags = f.(uint16)
	return nil
}

func (r *decodeRun) decodeBlock(ctx context.Context, b *block) error {
	start := r.cur.Pos()
	count, err := r.cur.readCount()
	if err != nil {
		return fmt.Errorf("block %s: %w", b.Name, err)
	}
	keys, err := r.cur.readKeys(count)
	if err != nil {
		return fmt.Errorf("block %s: %w", b.Name, err)
	}
	values, err := b.read(r.cur, count)
	if err != nil {
		return fmt.Errorf("block %s: %w", b.Name, err)
	}
	if len(values) != count {
		return fmt.Errorf("block %s: reader returned %d values for %d keys", b.Name, len(values), count)
	}

	r.logger.DebugContext(ctx, "Decoded block", "block", b.Name, "keys", count, "bytes", r.cur.Pos()-start)
	return r.record.merge(b.Name, keys, values)
}

func (r *decodeRun) validateTrailer() error {
	rest, err := r.cur.Remaining()
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return nil
	}

	nonZero := false
	for _, b := range rest {
		if b != 0 {
			nonZero = true
			break
		}
	}
	if nonZero || r.trailer == TrailerStrict {
		return &TrailingDataError{Len: len(rest), NonZero: nonZero}
	}
	return nil
}
