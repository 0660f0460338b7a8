package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "preferences.json")
	p := LoadFrom(path)
	p.SetString(KeyLastDir, "/tmp/pictures")
	p.SetFloat(KeyWindowWidth, 1280)
	require.NoError(t, p.Save())

	q := LoadFrom(path)
	assert.Equal(t, "/tmp/pictures", q.String(KeyLastDir))
	assert.Equal(t, 1280.0, q.Float(KeyWindowWidth))
	assert.Equal(t, path, q.Path())
}

func TestMissingValuesFallBack(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "none.json"))
	assert.Empty(t, p.String(KeyLastImage))
	assert.Zero(t, p.Float(KeyWindowHeight))
	assert.Equal(t, 720.0, p.FloatWithFallback(KeyWindowHeight, 720))
}

func TestCorruptFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFrom(path)
	assert.Empty(t, p.String(KeyLastDir))
	p.SetString(KeyLastDir, "x")
	require.NoError(t, p.Save())
	assert.Equal(t, "x", LoadFrom(path).String(KeyLastDir))
}

func TestWrongTypeReadsAsUnset(t *testing.T) {
	p := LoadFrom(filepath.Join(t.TempDir(), "p.json"))
	p.SetString(KeyWindowWidth, "wide")
	assert.Zero(t, p.Float(KeyWindowWidth))
}
