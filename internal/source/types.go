package source

import (
	"errors"

	"github.com/theirongolddev/fincast/internal/model"
)

// ErrInvalidFile is returned when an import file has the wrong structure.
var ErrInvalidFile = errors.New("invalid import file")

// Format identifies an import file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatOFX Format = "ofx"
)

// DiscoveredFile represents an import file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Name   string // path relative to the scanned directory
	Format Format
}

// ParseResult holds the output of parsing a single import file.
type ParseResult struct {
	Records []model.Record
	Skipped int // rows dropped for missing required cells
	Err     error
}
