// Package inibin decodes version 2 inibin files into a flat record of
// integer keys to values.
//
// # Format
//
// An inibin file is little-endian throughout:
//
//	u8  version              // must be 2
//	u16 string_table_length  // byte length of the trailing string region
//	u16 flags                // bitmask selecting the blocks present
//	<blocks, in catalog order, only when their flag bit is set>
//	  u16 key_count
//	  i32 key[key_count]
//	  <values, layout given by the block descriptor>
//	<string table, when its flag bit is set>
//	  u16 key_count
//	  i32 key[key_count]
//	  u16 offset[key_count]
//	  u8  region[string_table_length]
//	<zero padding, or nothing>
//
// # Usage
//
//	record, err := inibin.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hp := record[742042233]
//
// A Decoder can be configured with a logger, a trailer policy and a custom
// block catalog:
//
//	dec := inibin.NewDecoder(
//	    inibin.WithLogger(logger),
//	    inibin.WithStrictTrailer(true),
//	)
//	record, err := dec.Decode(ctx, data)
//
// # Errors
//
// Every failure aborts the decode without a partial record. The returned
// error matches one of ErrUnexpectedEOF, ErrUnsupportedVersion,
// ErrUnrecognizedFlags, ErrDuplicateKey or ErrTrailingData under errors.Is;
// the typed errors (*VersionError, *FlagsError, *DuplicateKeyError,
// *TrailingDataError) carry the diagnostics.
//
// # Thread Safety
//
// A Decoder holds no per-call state and may be shared between goroutines.
// The default catalog is immutable.
package inibin
