// Package ibin provides a high-level API for reading inibin files into
// readable, nested Go maps.
//
// # Overview
//
// This package combines the decoder in package inibin with the schema
// translation in package keymap. It supports:
//
//   - Raw decoding to a flat key/value map
//   - Translation with bundled (champion, ability) or YAML schemas
//   - String substitution tables and legacy charsets
//   - zlib-wrapped payloads as stored in game archives
//   - JSON output
//
// # Quick Start
//
//	result, err := ibin.ParseBinary(data, ibin.WithKind("champion"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result["stats"])
//
// Without a kind or schema the flat record is returned, keyed by the
// decimal form of each key:
//
//	raw, err := ibin.ParseBinary(data)
//
// # Custom Parser Instance
//
//	parser := ibin.NewParser(
//	    ibin.WithSchemaPath("schemas/item.yaml"),
//	    ibin.WithStringEncoding("windows-1252"),
//	    ibin.WithStrictTrailer(true),
//	)
//	result, err := parser.ParseBinary(ctx, data)
//
// # Configuration Options
//
//   - WithKind(string): bundled schema by kind or alias (c, a)
//   - WithSchema(keymap.Schema): explicit schema
//   - WithSchemaPath(string): YAML schema file, cached per path
//   - WithRaw(): skip translation
//   - WithSubstitutions(keymap.Substitutions): replacement text for strings
//   - WithStringEncoding(string): charset of string-table bytes
//   - WithStrictTrailer(bool): reject trailing padding
//   - WithLogger(*slog.Logger), WithDebugMode(bool), WithCaching(bool)
//
// # Thread Safety
//
// A Parser may be shared between goroutines; its schema cache is guarded by
// a read-write mutex.
package ibin
