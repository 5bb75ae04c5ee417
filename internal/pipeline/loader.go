package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/fincast/internal/model"
	"github.com/theirongolddev/fincast/internal/source"
)

// FileError records an import file that could not be parsed.
type FileError struct {
	Path string
	Err  error
}

// LoadResult holds the output of the full import pipeline.
type LoadResult struct {
	Records     []model.Record
	TotalFiles  int
	ParsedFiles int
	SkippedRows int
	FileErrors  []FileError
}

// ProgressFunc receives the number of files parsed so far out of total.
type ProgressFunc func(current, total int)

// Load discovers and parses every import file under dir.
// Files are parsed by GOMAXPROCS workers.
func Load(dir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	results := parseAll(files, func(n int) {
		if progressFn != nil {
			progressFn(n, len(files))
		}
	})

	for i, pr := range results {
		result.collect(files[i], pr)
	}
	return result, nil
}

func (r *LoadResult) collect(f source.DiscoveredFile, pr source.ParseResult) bool {
	if pr.Err != nil {
		r.FileErrors = append(r.FileErrors, FileError{Path: f.Path, Err: pr.Err})
		return false
	}
	r.ParsedFiles++
	r.SkippedRows += pr.Skipped
	r.Records = append(r.Records, pr.Records...)
	return true
}

// parseAll parses files in parallel, preserving input order in the result.
// onDone is called with the running count after each file.
func parseAll(files []source.DiscoveredFile, onDone func(n int)) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if onDone != nil {
					onDone(int(n))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
