package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// writeDebugUnformatted writes unformatted code to a sidecar file next to the
// intended output. This is best-effort and never replaces the real file.
func writeDebugUnformatted(outDir, filename string, content []byte) error {
	if outDir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return err
	}

	p := filepath.Join(outDir, debugFilename(filename))

	return os.WriteFile(p, content, filePerm)
}

// debugFilename keeps a .go extension so editors can syntax highlight, but
// avoids colliding with real output.
func debugFilename(filename string) string {
	return strings.TrimSuffix(filename, ".go") + ".unformatted.go"
}
