package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanitizer-generator/internal/analyze"
)

func TestWriteFiles(t *testing.T) {
	pkgDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "nested")

	// A leftover sidecar is cleaned up by a successful write.
	require.NoError(t, writeDebugUnformatted(pkgDir, "a_sanitize.go", []byte("broken")))

	files := []GeneratedFile{
		{Filename: "a_sanitize.go", Dir: pkgDir, Content: []byte("package a\n")},
	}

	paths, err := WriteFiles(files, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(pkgDir, "a_sanitize.go")}, paths)
	assert.NoFileExists(t, filepath.Join(pkgDir, "a_sanitize.unformatted.go"))

	paths, err = WriteFiles(files, outDir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(outDir, "a_sanitize.go")}, paths)

	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "package a\n", string(b))
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()

	removed, err := RemoveStale(dir, "a")
	require.NoError(t, err)
	assert.False(t, removed)

	// Hand-written files with the same name are left alone.
	path := filepath.Join(dir, "a_sanitize.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n"), filePerm))

	removed, err = RemoveStale(dir, "a")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.FileExists(t, path)

	require.NoError(t, os.WriteFile(path, []byte(analyze.GeneratedHeader+"\n\npackage a\n"), filePerm))

	removed, err = RemoveStale(dir, "a")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoFileExists(t, path)
}
