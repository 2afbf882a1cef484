package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinfer/inibin-plugin/pkg/inibin"
)

func TestBuiltin_Kinds(t *testing.T) {
	assert.Equal(t, []string{"ability", "champion"}, Kinds())

	for _, kind := range []string{"champion", "c", "C", "ability", "a"} {
		schema, err := Builtin(kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, schema)
	}

	_, err := Builtin("item")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ability, champion")
}

func TestBuiltin_Champion(t *testing.T) {
	schema, err := Builtin("champion")
	require.NoError(t, err)

	record := inibin.Record{
		742042233:   float32(500),
		-166675978:  float32(1.5),
		-2103674057: float32(-0.375),
		770205030:   float32(2),
		1081768566:  float32(325),
		404599689:   "skill_q",
	}
	got := Translate(record, schema, Substitutions{"skill_q": "Mystic Shot"})

	stats := got["stats"].(map[string]any)
	assert.Equal(t, float32(500), stats["hp"].(map[string]any)["base"])
	assert.Nil(t, stats["hp"].(map[string]any)["per_level"])
	assert.InDelta(t, 7.5, stats["hp5"].(map[string]any)["base"], 1e-9)
	assert.InDelta(t, 1.0, stats["aspd"].(map[string]any)["base"], 1e-9)
	assert.InDelta(t, 0.02, stats["aspd"].(map[string]any)["per_level"], 1e-9)
	assert.Equal(t, float32(325), stats["speed"])

	abilities := got["abilities"].(map[string]any)
	assert.Equal(t, "Mystic Shot", abilities["skill1"])
	assert.Nil(t, abilities["passive"])
	assert.Nil(t, abilities["skill2"])
}

func TestBuiltin_Ability(t *testing.T) {
	schema, err := Builtin("a")
	require.NoError(t, err)

	record := inibin.Record{
		844968125:   float32(0.6),
		-1783890251: int32(4),
		-1665665330: float32(10),
		1805538005:  "Mystic Shot",
		-523242843:  "50",
	}
	got := Translate(record, schema, nil)
	assert.InDelta(t, 60.0, got["scale1"], 1e-4)
	assert.Equal(t, 40.0, got["scale2"])
	assert.Equal(t, float32(10), got["cooldown"].(map[string]any)["level1"])
	assert.Equal(t, int64(50), got["cost"].(map[string]any)["level1"])
	assert.Equal(t, "Mystic Shot", got["name"])
	assert.Nil(t, got["effect6"])
}
