package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fincast/internal/source"
	"github.com/theirongolddev/fincast/internal/store"
)

// SyncResult extends LoadResult with file tracking metadata.
type SyncResult struct {
	LoadResult
	Unchanged int
	Reparsed  int
	Saved     int
}

// LoadWithCache discovers import files, skips those whose mtime and size
// match the store's tracker, and saves records from the rest. Records holds
// only what was parsed in this pass.
func LoadWithCache(dir string, st *store.Store, progressFn ProgressFunc) (*SyncResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &SyncResult{LoadResult: LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	var toParse []source.DiscoveredFile
	var stats []os.FileInfo
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		prev, ok := tracked[f.Path]
		if ok && prev.MtimeNs == info.ModTime().UnixNano() && prev.SizeBytes == info.Size() {
			result.Unchanged++
			continue
		}
		toParse = append(toParse, f)
		stats = append(stats, info)
	}
	result.Reparsed = len(toParse)

	if len(toParse) == 0 {
		return result, nil
	}

	results := parseAll(toParse, func(n int) {
		if progressFn != nil {
			progressFn(n+result.Unchanged, result.TotalFiles)
		}
	})

	for i, pr := range results {
		if !result.collect(toParse[i], pr) {
			continue
		}
		saved, err := st.SaveFile(toParse[i].Path, pr.Records, stats[i].ModTime().UnixNano(), stats[i].Size())
		if err != nil {
			return nil, fmt.Errorf("saving %s: %w", toParse[i].Path, err)
		}
		result.Saved += saved
	}

	return result, nil
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fincast")
}

// DBPath returns the default path of the ledger database.
func DBPath() string {
	return filepath.Join(DataDir(), "fincast.db")
}

// ImportDir returns the default directory scanned by sync.
func ImportDir() string {
	return filepath.Join(DataDir(), "imports")
}
