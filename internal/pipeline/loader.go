package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/source"
)

// ImportResult holds the output of parsing a batch of CSV files.
type ImportResult struct {
	Transactions []model.Transaction
	Files        []source.ParseResult
	TotalFiles   int
	ParsedFiles  int
	FileErrors   int
	SkippedRows  int
	Unchanged    int
}

// ProgressFunc is called during importing to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// ImportFiles parses files with a bounded worker pool. Results are merged in input order,
// so the transaction order does not depend on scheduling. Every file sees the same
// classifier history; rows learn only from earlier rows of their own file.
func ImportFiles(files []source.DiscoveredFile, opts source.Options, progressFn ProgressFunc) *ImportResult {
	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result
	}

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
				results[idx] = source.ParseFile(files[idx], opts)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	result.Files = results
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.SkippedRows += len(pr.Skipped)
		result.Transactions = append(result.Transactions, pr.Transactions...)
	}
	return result
}
