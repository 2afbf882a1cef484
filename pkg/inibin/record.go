package inibin

import (
	"maps"
	"slices"
	"strconv"
)

// Record is the flat mapping produced by decoding. Values are int32,
// float32, float64, int16, int8, bool, string or []any for grouped blocks.
type Record map[int32]any

// Keys returns the record keys in ascending order.
func (r Record) Keys() []int32 {
	return slices.Sorted(maps.Keys(r))
}

// StringKeyed returns a copy keyed by the decimal form of each key.
func (r Record) StringKeyed() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[strconv.FormatInt(int64(k), 10)] = v
	}
	return out
}

// merge adds the pairs of one block, rejecting any key already present.
func (r Record) merge(name string, keys []int32, values []any) error {
	for i, k := range keys {
		if _, exists := r[k]; exists {
			return &DuplicateKeyError{Key: k, Block: name}
		}
		r[k] = values[i]
	}
	return nil
}
