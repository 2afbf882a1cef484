package keymap

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinfer/inibin-plugin/pkg/inibin"
)

func TestTranslate_EndToEnd(t *testing.T) {
	record := inibin.Record{7: int32(100), 9: "hi"}
	got := Translate(record, Schema{"a": Key(7), "b": Key(9)}, nil)
	assert.Equal(t, map[string]any{"a": int32(100), "b": "hi"}, got)
}

func TestTranslate_Nested(t *testing.T) {
	record := inibin.Record{1: int32(10), 2: float32(0.5)}
	schema := Schema{
		"stats": Schema{
			"hp": Schema{"base": Key(1), "per_level": Key(2)},
			"mp": Schema{"base": Key(3)},
		},
		"empty": Schema{},
	}

	got := Translate(record, schema, nil)
	assert.Equal(t, map[string]any{
		"stats": map[string]any{
			"hp": map[string]any{"base": int32(10), "per_level": float32(0.5)},
			"mp": map[string]any{"base": nil},
		},
		"empty": map[string]any{},
	}, got)
}

func TestTranslate_MissingAndUnimplemented(t *testing.T) {
	schema := Schema{
		"missing": Key(404),
		"todo":    Unimplemented{},
		"fn":      KeyWithTransform{Key: 405, Transform: func(any) any { return "called" }},
	}
	got := Translate(inibin.Record{}, schema, nil)
	assert.Equal(t, map[string]any{"missing": nil, "todo": nil, "fn": nil}, got)
}

func TestTranslate_Coercion(t *testing.T) {
	record := inibin.Record{1: "42", 2: "4.5", 3: "abc", 4: "-7", 5: "", 6: " 12 "}
	schema := Schema{"i": Key(1), "f": Key(2), "s": Key(3), "neg": Key(4), "empty": Key(5), "padded": Key(6)}

	got := Translate(record, schema, nil)
	assert.Equal(t, map[string]any{
		"i":      int64(42),
		"f":      4.5,
		"s":      "abc",
		"neg":    int64(-7),
		"empty":  "",
		"padded": int64(12),
	}, got)
}

func TestTranslate_Substitutions(t *testing.T) {
	record := inibin.Record{1: "game_spell_name", 2: "5", 3: int32(5), 4: "other"}
	subs := Substitutions{"game_spell_name": "Fireball", "5": "five"}
	schema := Schema{
		"name":  Key(1),
		"num":   Key(2),
		"int":   Key(3),
		"other": Key(4),
		"upper": KeyWithTransform{Key: 1, Transform: func(v any) any { return strings.ToUpper(v.(string)) }},
	}

	got := Translate(record, schema, subs)
	assert.Equal(t, "Fireball", got["name"])
	// "5" coerces to an integer before the lookup, so it is not substituted.
	assert.Equal(t, int64(5), got["num"])
	assert.Equal(t, int32(5), got["int"])
	assert.Equal(t, "other", got["other"])
	// Transforms see the substituted value.
	assert.Equal(t, "FIREBALL", got["upper"])
}

func TestTranslate_TransformOrder(t *testing.T) {
	var seen any
	schema := Schema{"x": KeyWithTransform{Key: 1, Transform: func(v any) any {
		seen = v
		return Mult5(v)
	}}}

	got := Translate(inibin.Record{1: "3"}, schema, nil)
	assert.Equal(t, int64(3), seen, "transform must receive the coerced value")
	assert.Equal(t, map[string]any{"x": int64(15)}, got)
}

func TestTranslate_Pure(t *testing.T) {
	record := inibin.Record{1: "42", 2: int32(7)}
	schema := Schema{"a": Key(1), "b": Schema{"c": Key(2), "d": Key(3)}}

	first := Translate(record, schema, nil)
	second := Translate(record, schema, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, "42", record[1], "record must not be modified")
	assert.Nil(t, first["b"].(map[string]any)["d"])

	// A nil leaf resolved again is still nil.
	again := Translate(inibin.Record{}, Schema{"d": Key(3)}, nil)
	assert.Nil(t, again["d"])
}

func TestTranslator_TextDecoder(t *testing.T) {
	upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
	failing := func(string) (string, error) { return "", errors.New("bad bytes") }
	record := inibin.Record{1: "abc", 2: "12"}
	schema := Schema{"s": Key(1), "n": Key(2)}

	got := NewTranslator(WithTextDecoder(upper), WithSubstitutions(Substitutions{"ABC": "sub"})).Translate(record, schema)
	assert.Equal(t, map[string]any{"s": "sub", "n": int64(12)}, got)

	got = NewTranslator(WithTextDecoder(failing)).Translate(record, schema)
	assert.Equal(t, map[string]any{"s": "abc", "n": int64(12)}, got)
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"4.5", 4.5},
		{"abc", "abc"},
		{"1e3", 1000.0},
		{"0x10", "0x10"},
		{"9223372036854775808", 9223372036854775808.0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestSchema_Keys(t *testing.T) {
	schema := Schema{
		"b": Key(2),
		"a": Schema{"z": KeyWithTransform{Key: 1}, "y": Unimplemented{}},
		"c": Key(3),
	}
	require.Equal(t, []int32{1, 2, 3}, schema.Keys())
}
