package gen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes generated files and returns their paths. Files go to
// outputDir when set, otherwise next to the sources of their package.
func WriteFiles(files []GeneratedFile, outputDir string) ([]string, error) {
	paths := make([]string, 0, len(files))

	for _, file := range files {
		dir := outputDir
		if dir == "" {
			dir = file.Dir
		}

		err := os.MkdirAll(dir, dirPerm)
		if err != nil {
			return paths, fmt.Errorf("creating output directory: %w", err)
		}

		outputPath := filepath.Join(dir, file.Filename)

		err = os.WriteFile(outputPath, file.Content, filePerm)
		if err != nil {
			return paths, fmt.Errorf("writing file %s: %w", file.Filename, err)
		}

		_ = os.Remove(filepath.Join(dir, debugFilename(file.Filename)))

		paths = append(paths, outputPath)
	}

	return paths, nil
}

// RemoveStale deletes the file previously generated for a package that no
// longer declares any struct. It reports whether a file was removed.
func RemoveStale(dir, pkgName string) (bool, error) {
	path := StaleFile(dir, pkgName)
	if path == "" {
		return false, nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("removing %s: %w", path, err)
	}

	return true, nil
}
