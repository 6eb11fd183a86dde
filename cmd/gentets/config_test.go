package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gen.gcfg")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestReadConfigExample(t *testing.T) {
	cfg, err := readConfig(writeConfig(t, exampleConfig), generatorConfig{})
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestReadConfigPartial(t *testing.T) {
	path := writeConfig(t, "[generator]\nkind = bcc\nres = 0.5\n")
	cfg, err := readConfig(path, defaultConfig())
	require.NoError(t, err)
	want := defaultConfig()
	want.Kind = "bcc"
	want.Res = 0.5
	assert.Equal(t, want, cfg)

	_, err = readConfig(writeConfig(t, "[generator]\nradius = 2\n"), defaultConfig())
	assert.Error(t, err)
}

func TestOverride(t *testing.T) {
	file := generatorConfig{Kind: "bcc", N: 1, Nu: 2, Nv: 3, R: 4, Res: 0.5}
	flags := generatorConfig{Kind: "tets", N: 7, Nu: 16, Nv: 8, R: 1, Res: 0.25}
	override(&file, flags, map[string]bool{"kind": true, "n": true})
	assert.Equal(t, generatorConfig{Kind: "tets", N: 7, Nu: 2, Nv: 3, R: 4, Res: 0.5}, file)
}

func TestGenerate(t *testing.T) {
	cfg := defaultConfig()
	m, err := cfg.generate()
	require.NoError(t, err)
	assert.Equal(t, 2*16*8, m.NumCells())

	cfg.Kind = "tets"
	m, err = cfg.generate()
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumCells())

	cfg.Kind = "bcc"
	m, err = cfg.generate()
	require.NoError(t, err)
	assert.NoError(t, m.Validate())
	assert.NotZero(t, m.NumCells())

	for _, bad := range []generatorConfig{
		{Kind: "cube"},
		{Kind: "tets"},
		{Kind: "sphere", Nu: 4, Nv: 0, R: 1},
		{Kind: "sphere", Nu: 4, Nv: 4, R: -1},
		{Kind: "bcc", R: 1, Res: 2},
	} {
		_, err := bad.generate()
		assert.Error(t, err, "%+v", bad)
	}
}
