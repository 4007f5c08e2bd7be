package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/cashcast/internal/model"
	"github.com/theirongolddev/cashcast/internal/source"
	"github.com/theirongolddev/cashcast/internal/store"
)

// ImportRequest selects what Import reads and where rows land.
type ImportRequest struct {
	Paths    []string // files or directories
	Scenario string   // default scenario for rows without one
	Force    bool     // re-import files the log says are unchanged
	DryRun   bool     // parse and report without saving
}

// Discover expands files and directories into CSV files, dropping duplicates.
// Every named path must exist; a directory with no CSV files below it is fine.
func Discover(paths []string) ([]source.DiscoveredFile, error) {
	seen := make(map[string]struct{})
	var out []source.DiscoveredFile
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		files, err := source.ScanDir(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		for _, f := range files {
			abs, err := filepath.Abs(f.Path)
			if err == nil {
				f.Path = abs
			}
			if _, dup := seen[f.Path]; dup {
				continue
			}
			seen[f.Path] = struct{}{}
			out = append(out, f)
		}
	}
	return out, nil
}

// Import discovers CSV files, skips the ones the import log has seen unchanged, parses
// the rest and appends their rows to the stored dataset in one update. The import log
// is only written after the dataset update succeeds.
func Import(st *store.Store, req ImportRequest, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := Discover(req.Paths)
	if err != nil {
		return nil, err
	}

	tracked, err := st.GetImportedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading import log: %w", err)
	}

	var toParse []source.DiscoveredFile
	unchanged := 0
	for _, f := range files {
		if prev, ok := tracked[f.Path]; ok && !req.Force && !prev.Changed(f.MtimeNs, f.Size) {
			unchanged++
			continue
		}
		toParse = append(toParse, f)
	}

	ds, _, err := st.Load()
	if err != nil {
		return nil, err
	}
	result := ImportFiles(toParse, source.Options{Scenario: req.Scenario, History: ds.Transactions}, progressFn)
	result.TotalFiles = len(files)
	result.Unchanged = unchanged

	if req.DryRun || len(result.Transactions) == 0 {
		return result, nil
	}

	if _, err := st.Update(func(ds *model.Dataset) error {
		return ds.AddTransactions(result.Transactions...)
	}); err != nil {
		return nil, fmt.Errorf("saving imported transactions: %w", err)
	}

	log := make(map[string]store.FileInfo)
	for i, pr := range result.Files {
		if pr.Err != nil {
			continue
		}
		f := toParse[i]
		log[f.Path] = store.FileInfo{MtimeNs: f.MtimeNs, SizeBytes: f.Size, Rows: len(pr.Transactions)}
	}
	if err := st.MarkImported(log); err != nil {
		return nil, fmt.Errorf("updating import log: %w", err)
	}
	return result, nil
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashcast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cashcast")
}

// DBPath returns the full path to the database.
func DBPath() string {
	return filepath.Join(DataDir(), "cashcast.db")
}
