package source

import (
	"fmt"
	"sort"

	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/pkg/datetime"
)

// SortPostFiles orders entries newest-first by the filename-embedded
// timestamp. When either of two compared entries lacks a parseable
// timestamp, the comparison falls back to reverse lexicographic name order.
// The sort is stable, so pagination over an unchanged listing is
// deterministic.
func SortPostFiles(entries []domain.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, iok := datetime.ExtractDateFromFileName(entries[i].Name)
		tj, jok := datetime.ExtractDateFromFileName(entries[j].Name)
		if iok && jok {
			return ti.After(tj)
		}
		return entries[i].Name > entries[j].Name
	})
}

// ValidatePageArgs rejects non-positive page numbers and page sizes before
// any listing work happens.
func ValidatePageArgs(page, pageSize int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrValidation, page)
	}
	if pageSize < 1 {
		return fmt.Errorf("%w: pageSize must be >= 1, got %d", domain.ErrValidation, pageSize)
	}
	return nil
}

// Paginate computes the half-open slice bounds for a 1-based page over n
// items.
func Paginate(n, page, pageSize int) (start, end int, hasMore bool, err error) {
	if err := ValidatePageArgs(page, pageSize); err != nil {
		return 0, 0, false, err
	}

	start = (page - 1) * pageSize
	if start > n {
		start = n
	}
	end = start + pageSize
	if end > n {
		end = n
	}
	return start, end, page*pageSize < n, nil
}
