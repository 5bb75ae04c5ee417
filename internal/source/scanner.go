package source

import (
	"os"
	"path/filepath"
	"strings"
)

// FormatOf returns the import format implied by a file name.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, true
	case ".ofx", ".qfx":
		return FormatOFX, true
	}
	return "", false
}

// ScanDir walks dir and discovers every importable ledger file.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		format, ok := FormatOf(path)
		if !ok {
			return nil
		}

		rel, _ := filepath.Rel(dir, path)
		files = append(files, DiscoveredFile{
			Path:   path,
			Name:   rel,
			Format: format,
		})
		return nil
	})

	return files, err
}
