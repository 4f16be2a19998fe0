package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"b.kt", "a.kt", "sub/c.kt", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package a"), 0o644))
	}

	found, err := NewFinder().Find(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.kt"),
		filepath.Join(dir, "b.kt"),
		filepath.Join(dir, "sub", "c.kt"),
	}, found)
}

func TestFindMissing(t *testing.T) {
	_, err := NewFinder().Find(filepath.Join(t.TempDir(), "missing.kt"))
	assert.Error(t, err)
}

func TestDecodeSource(t *testing.T) {
	text, err := DecodeSource([]byte("\xef\xbb\xbfpackage a"))
	require.NoError(t, err)
	assert.Equal(t, "package a", text)

	text, err = DecodeSource([]byte{0xff, 0xfe, 'f', 0, 'u', 0, 'n', 0})
	require.NoError(t, err)
	assert.Equal(t, "fun", text)

	text, err = DecodeSource([]byte("fun main() {}"))
	require.NoError(t, err)
	assert.Equal(t, "fun main() {}", text)
}
