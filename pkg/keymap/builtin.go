package keymap

import (
	"embed"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

//go:embed schemas/*.yaml
var builtinFS embed.FS

var kindAliases = map[string]string{
	"a":        "ability",
	"ability":  "ability",
	"c":        "champion",
	"champion": "champion",
}

var builtins = sync.OnceValues(func() (map[string]Schema, error) {
	loader, err := NewLoader()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Schema)
	for _, kind := range slices.Sorted(maps.Values(kindAliases)) {
		if _, done := out[kind]; done {
			continue
		}
		data, err := builtinFS.ReadFile("schemas/" + kind + ".yaml")
		if err != nil {
			return nil, err
		}
		schema, err := loader.Load(data)
		if err != nil {
			return nil, fmt.Errorf("builtin schema %s: %w", kind, err)
		}
		out[kind] = schema
	}
	return out, nil
})

// ResolveKind maps a kind or its alias (c, a) to the canonical kind name.
func ResolveKind(kind string) (string, bool) {
	canonical, ok := kindAliases[strings.ToLower(kind)]
	return canonical, ok
}

// Builtin returns the bundled schema for an entity kind. The returned schema
// is shared and must not be modified.
func Builtin(kind string) (Schema, error) {
	canonical, ok := ResolveKind(kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q, must be one of %s", kind, strings.Join(Kinds(), ", "))
	}
	all, err := builtins()
	if err != nil {
		return nil, err
	}
	return all[canonical], nil
}

// Kinds returns the canonical names of the bundled schemas.
func Kinds() []string {
	return slices.Compact(slices.Sorted(maps.Values(kindAliases)))
}
