package keymap

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// TransformRegistry manages named transforms that schema files refer to
type TransformRegistry struct {
	mu        sync.RWMutex
	functions map[string]TransformFunc
}

// NewTransformRegistry creates a new registry with the default transforms
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		functions: make(map[string]TransformFunc),
	}

	registry.Register("mult5", Mult5)
	registry.Register("percentage", Percentage)
	registry.Register("attack_speed", AttackSpeed)
	registry.Register("percent_points", PercentPoints)
	registry.Register("split_pipe", SplitPipe)

	return registry
}

// Register adds or replaces a named transform
func (r *TransformRegistry) Register(name string, fn TransformFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[name] = fn
}

// Get retrieves a transform by name
func (r *TransformRegistry) Get(name string) (TransformFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, exists := r.functions[name]
	return fn, exists
}

// Names returns the registered names in sorted order
func (r *TransformRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.functions))
}

// Mult5 converts a per-second value to a per-five-seconds one.
func Mult5(v any) any {
	if i, ok := asInt(v); ok {
		return i * 5
	}
	if f, ok := asFloat(v); ok {
		return f * 5
	}
	return v
}

// Percentage turns ratio floats into percents. Integer ratios are stored
// in tenths of a percent.
func Percentage(v any) any {
	if i, ok := asInt(v); ok {
		return float64(i * 10)
	}
	if f, ok := asFloat(v); ok {
		return f * 100
	}
	return v
}

// AttackSpeed converts an attack delay offset to attacks per second.
// An offset of -1 has no meaningful speed and yields nil.
func AttackSpeed(v any) any {
	f, ok := asNumber(v)
	if !ok {
		return v
	}
	if f == -1 {
		return nil
	}
	return 0.625 / (1 + f)
}

// PercentPoints converts an integer percentage (2 => 2%) to a ratio.
func PercentPoints(v any) any {
	if f, ok := asNumber(v); ok {
		return f * 0.01
	}
	return v
}

// SplitPipe splits a " | " delimited string into its parts.
func SplitPipe(v any) any {
	if s, ok := v.(string); ok {
		return strings.Split(s, " | ")
	}
	return v
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asNumber(v any) (float64, bool) {
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return asFloat(v)
}
