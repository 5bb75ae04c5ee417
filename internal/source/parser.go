// Package source discovers and parses ledger import files (CSV and OFX/QFX).
package source

import (
	"fmt"
	"os"
)

// ParseFile reads one discovered file using the parser for its format.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	switch df.Format {
	case FormatCSV:
		records, skipped, err := ParseCSV(f)
		return ParseResult{Records: records, Skipped: skipped, Err: err}
	case FormatOFX:
		records, err := ParseOFX(f)
		return ParseResult{Records: records, Err: err}
	}
	return ParseResult{Err: fmt.Errorf("%w: unsupported format %q", ErrInvalidFile, df.Format)}
}

// ParsePath parses a single file given only its path.
func ParsePath(path string) ParseResult {
	format, ok := FormatOf(path)
	if !ok {
		return ParseResult{Err: fmt.Errorf("%w: %s is not a .csv, .ofx or .qfx file", ErrInvalidFile, path)}
	}
	return ParseFile(DiscoveredFile{Path: path, Name: path, Format: format})
}
