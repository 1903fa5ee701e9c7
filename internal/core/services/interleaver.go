package services

import (
	"sort"

	"github.com/tallybook/statement_backend/internal/core/domain"
)

// mergeRecords interleaves independently fetched per-kind pages into one
// newest-first sequence, truncated to pageSize.
//
// Each source is paginated on its own table, so the merge must happen before
// the truncation; truncating a source first could starve it at a page
// boundary even though it still has in-range records. Records dropped by the
// truncation are not lost: the page cursor advances only to the last record
// actually consumed, so every source re-offers its unconsumed rows on the
// next page.
func mergeRecords(perKind [][]domain.SourceRecord, pageSize int) []domain.SourceRecord {
	total := 0
	for _, recs := range perKind {
		total += len(recs)
	}
	merged := make([]domain.SourceRecord, 0, total)
	for _, recs := range perKind {
		merged = append(merged, recs...)
	}

	// Newest first; the id tie-break keeps the order total even when two
	// events share a timestamp.
	sort.Slice(merged, func(i, j int) bool {
		return merged[j].Before(merged[i])
	})

	if len(merged) > pageSize {
		merged = merged[:pageSize]
	}
	return merged
}
