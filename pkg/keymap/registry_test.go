package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformRegistry(t *testing.T) {
	r := NewTransformRegistry()
	assert.Equal(t, []string{"attack_speed", "mult5", "percent_points", "percentage", "split_pipe"}, r.Names())

	_, ok := r.Get("nope")
	assert.False(t, ok)

	r.Register("double", func(v any) any { return v.(int64) * 2 })
	fn, ok := r.Get("double")
	require.True(t, ok)
	assert.Equal(t, int64(8), fn(int64(4)))
}

func TestNamedTransforms(t *testing.T) {
	tests := []struct {
		name string
		fn   TransformFunc
		in   any
		want any
	}{
		{"mult5 int", Mult5, int32(3), int64(15)},
		{"mult5 float", Mult5, float32(0.5), 2.5},
		{"mult5 string", Mult5, "x", "x"},
		{"percentage int", Percentage, int32(3), 30.0},
		{"percentage float", Percentage, 0.25, 25.0},
		{"percentage nil", Percentage, nil, nil},
		{"attack speed", AttackSpeed, float32(0.25), 0.5},
		{"attack speed sentinel", AttackSpeed, float32(-1), nil},
		{"attack speed int", AttackSpeed, int64(0), 0.625},
		{"percent points", PercentPoints, int32(2), 0.02},
		{"split pipe", SplitPipe, "a | b | c", []string{"a", "b", "c"}},
		{"split pipe non-string", SplitPipe, int8(1), int8(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(tt.in)
			if f, ok := tt.want.(float64); ok {
				assert.InDelta(t, f, got, 1e-9)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
