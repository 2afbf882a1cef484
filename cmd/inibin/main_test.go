package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// rangeInibin holds the champion attack range key with the given value.
func rangeInibin(value int32) []byte {
	buf := []byte{0x02, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(1387461685))
	return binary.LittleEndian.AppendUint32(buf, uint32(value))
}

func runApp(t *testing.T, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	if err := app.Run(append([]string{"inibin"}, args...)); err != nil {
		return nil, err
	}
	var result map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	return result, nil
}

func TestRun(t *testing.T) {
	path := writeFile(t, "champ.inibin", rangeInibin(550))

	raw, err := runApp(t, path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1387461685": float64(550)}, raw)

	translated, err := runApp(t, "--kind", "c", path)
	require.NoError(t, err)
	stats := translated["stats"].(map[string]any)
	assert.Equal(t, float64(550), stats["range"])

	schema := writeFile(t, "schema.yaml", []byte("range: 1387461685\n"))
	custom, err := runApp(t, "--schema", schema, path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"range": float64(550)}, custom)
}

func TestRun_Errors(t *testing.T) {
	_, err := runApp(t)
	require.Error(t, err)

	padded := writeFile(t, "padded.inibin", append(rangeInibin(1), 0x00))
	_, err = runApp(t, padded)
	require.NoError(t, err)
	_, err = runApp(t, "--strict", padded)
	require.Error(t, err)

	_, err = runApp(t, "--kind", "item", padded)
	require.Error(t, err)

	_, err = runApp(t, filepath.Join(t.TempDir(), "missing.inibin"))
	require.Error(t, err)
}
