package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringFunctions(t *testing.T) {
	pool := newTestPool(t)

	tests := []struct {
		name  string
		expr  string
		value any
		want  any
	}{
		{"to_s int", "to_s(x)", int32(42), "42"},
		{"to_s string", "to_s(x)", "abc", "abc"},
		{"split", "split(x, ' | ')", "a | b | c", []any{"a", "b", "c"}},
		{"split no separator", "split(x, ',')", "abc", []any{"abc"}},
		{"to_i", "to_i(x) + 1", " 41", int64(42)},
		{"to_i double", "to_i(x)", 3.9, int64(3)},
		{"to_f int", "to_f(x) / 2.0", int32(3), 1.5},
		{"to_f string", "to_f(x)", "2.5", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := pool.GetExpression(tt.expr)
			require.NoError(t, err)
			got, err := pool.EvaluateExpression(program, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringFunctions_Errors(t *testing.T) {
	pool := newTestPool(t)

	for _, expr := range []string{"to_i(x)", "to_f(x)"} {
		fn, err := pool.Func(expr)
		require.NoError(t, err)
		_, err = fn("not a number")
		assert.Error(t, err, expr)
	}
}
