package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwood-labs/semtrex/id"
)

func writeLibrary(t *testing.T, yamlText string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))
	return path
}

func TestLoadFromFileAndLookup(t *testing.T) {
	path := writeLibrary(t, `
patterns:
  TASK_PREFIX: "/TASK/(TITLE,STATUS,.*)"
  HOME_COORDS: "/HomeLocation/(<lat:lat>,<lon:lon>)"
`)

	lib, err := LoadFromFile(path)
	require.NoError(t, err)

	pattern, ok := lib.Lookup("TASK_PREFIX")
	require.True(t, ok)
	assert.Equal(t, "/TASK/(TITLE,STATUS,.*)", pattern)

	_, ok = lib.Lookup("NOT_THERE")
	assert.False(t, ok)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsMalformedPattern(t *testing.T) {
	r := id.NewRegistry()
	b := id.RegisterBuiltins(r)
	r.DefineSymbol(0, id.NullStructure, "TASK")

	lib := &Library{Patterns: map[string]string{
		"BAD": "TASK/(",
	}}

	err := lib.Validate(r, b)
	require.Error(t, err)
	var invalid InvalidPatternError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "BAD", invalid.Name)
}

func TestValidateAcceptsWellFormedLibrary(t *testing.T) {
	r := id.NewRegistry()
	b := id.RegisterBuiltins(r)
	r.DefineSymbol(0, id.NullStructure, "TASK")
	r.DefineSymbol(0, id.NullStructure, "TITLE")

	lib := &Library{Patterns: map[string]string{
		"OK": "/TASK/TITLE",
	}}

	require.NoError(t, lib.Validate(r, b))
}
