package source

import (
	"fmt"

	"github.com/theirongolddev/cashcast/internal/model"
)

// Column order of an import row. Only date, vendor and amount are required.
var Columns = []string{"date", "vendor", "amount", "type", "category", "subcategory", "scenario", "payment"}

// Uncategorised is filed on rows with no category and no classifier suggestion.
const Uncategorised = "Uncategorised"

// DiscoveredFile is a CSV file found during directory scanning.
type DiscoveredFile struct {
	Path    string
	MtimeNs int64
	Size    int64
}

// Options tunes how rows become transactions.
type Options struct {
	// Scenario is filed on rows that leave the scenario column blank.
	Scenario string
	// History feeds the category classifier. Rows parsed earlier in the same file are
	// added to it as parsing proceeds.
	History []model.Transaction
	// NewID overrides the id generator, mainly for tests.
	NewID func() string
}

// RowError describes a row that was skipped.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseResult holds the output of parsing a single CSV file.
type ParseResult struct {
	Path         string
	Transactions []model.Transaction
	Skipped      []RowError
	Err          error
}
