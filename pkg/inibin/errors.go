package inibin

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when a read runs past the end of the buffer.
	ErrUnexpectedEOF = errors.New("unexpected end of buffer")
	// ErrUnsupportedVersion is returned when the header version is not Version.
	ErrUnsupportedVersion = errors.New("unsupported version")
	// ErrUnrecognizedFlags is returned when the flags have bits outside the catalog.
	ErrUnrecognizedFlags = errors.New("unrecognized flags")
	// ErrDuplicateKey is returned when a key is produced by more than one block.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrTrailingData is returned when bytes remain after the last block.
	ErrTrailingData = errors.New("trailing data")
)

// VersionError reports the version found in the header.
type VersionError struct {
	Version uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("unsupported version %d (want %d)", e.Version, Version)
}

func (e *VersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// FlagsError carries the flag bits that no block descriptor claims.
type FlagsError struct {
	Flags uint16
}

func (e *FlagsError) Error() string {
	return fmt.Sprintf("unrecognized flags: %#06x", e.Flags)
}

func (e *FlagsError) Is(target error) bool { return target == ErrUnrecognizedFlags }

// DuplicateKeyError reports a key redefined by a later block.
type DuplicateKeyError struct {
	Key   int32
	Block string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %d in block %s", e.Key, e.Block)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// TrailingDataError describes the bytes left after decoding.
type TrailingDataError struct {
	Len     int
	NonZero bool
}

func (e *TrailingDataError) Error() string {
	if e.NonZero {
		return fmt.Sprintf("%d bytes remaining", e.Len)
	}
	return fmt.Sprintf("%d bytes of padding remaining", e.Len)
}

func (e *TrailingDataError) Is(target error) bool { return target == ErrTrailingData }
