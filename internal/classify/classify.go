// Package classify suggests a category for a new vendor from the categories
// past transactions with the same vendor name were filed under.
package classify

import (
	"regexp"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/theirongolddev/cashcast/internal/model"
)

// Threshold is the share of matches the top category needs to be suggested.
const Threshold = 0.8

// storeSuffix matches a store-number suffix such as " #204" or " 0042 Main St".
var storeSuffix = regexp.MustCompile(`\s+#?\d+.*`)

// Normalize strips a store-number suffix, trims space and case-folds the vendor name.
func Normalize(vendor string) string {
	v := strings.TrimSpace(vendor)
	if loc := storeSuffix.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// SuggestCategory returns the category most history transactions for vendors sharing the
// normalized prefix were filed under, provided it covers at least Threshold of them.
// Frequency ties go to the category seen first.
func SuggestCategory(vendor string, history []model.Transaction) (string, bool) {
	prefix := Normalize(vendor)
	if prefix == "" {
		return "", false
	}

	counts := make(map[string]int)
	var order []string
	total := 0
	for _, t := range history {
		if !strings.HasPrefix(strings.ToLower(t.Vendor), prefix) {
			continue
		}
		if counts[t.Category] == 0 {
			order = append(order, t.Category)
		}
		counts[t.Category]++
		total++
	}
	if total == 0 {
		return "", false
	}

	best := order[0]
	for _, cat := range order[1:] {
		if counts[cat] > counts[best] {
			best = cat
		}
	}
	if float64(counts[best])/float64(total) < Threshold {
		return "", false
	}
	return best, true
}

// Match is a known vendor ranked by edit distance to a query.
type Match struct {
	Vendor   string `json:"vendor"`
	Distance int    `json:"distance"`
}

// NearestVendors ranks distinct history vendors by Levenshtein distance between their
// normalized names and the normalized query, closest first. Only vendors within half the
// query length are returned.
func NearestVendors(vendor string, history []model.Transaction, limit int) []Match {
	query := Normalize(vendor)
	if query == "" || limit <= 0 {
		return nil
	}
	maxDist := max(len(query)/2, 1)

	seen := make(map[string]struct{})
	var out []Match
	for _, t := range history {
		name := Normalize(t.Vendor)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		d := levenshtein.ComputeDistance(query, name)
		if d > maxDist {
			continue
		}
		out = append(out, Match{Vendor: strings.TrimSpace(t.Vendor), Distance: d})
	}
	slices.SortStableFunc(out, func(a, b Match) int { return a.Distance - b.Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
