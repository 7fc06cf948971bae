// Package query implements search, ordering and pagination over an
// in-memory collection. It is pure: results depend only on the arguments.
package query

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rolecall/mock-api/internal/core/domain"
)

// Searchable is an item that can be matched by a search term and ordered by
// creation time.
type Searchable interface {
	SearchFields() []string
}

// Page filters items by search, orders them newest first and cuts out the
// requested 1-based page. A page outside the result set yields empty data
// but keeps next/prev/pages relative to the whole result set.
func Page[T Searchable](items []T, createdAt func(T) time.Time, search string, page, pageSize int) domain.Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	matched := Filter(items, search)
	slices.SortStableFunc(matched, func(a, b T) int {
		return createdAt(b).Compare(createdAt(a))
	})

	pages := (len(matched) + pageSize - 1) / pageSize

	out := domain.Page[T]{Data: []T{}, Pages: pages}
	if page < pages {
		next := page + 1
		out.Next = &next
	}
	if page > 1 {
		prev := page - 1
		out.Prev = &prev
	}

	// page is bounded by pages here, so the offset cannot overflow.
	if page <= pages {
		start := (page - 1) * pageSize
		end := min(start+pageSize, len(matched))
		out.Data = append(out.Data, matched[start:end]...)
	}
	return out
}

// Filter returns the items whose search fields contain term, ignoring case.
// An empty term keeps every item. The result never aliases items.
func Filter[T Searchable](items []T, term string) []T {
	out := make([]T, 0, len(items))
	if term == "" {
		return append(out, items...)
	}

	needle := strings.ToLower(term)
	for _, item := range items {
		for _, field := range item.SearchFields() {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// ParsePage converts the raw page query parameter. Missing, non-numeric and
// non-positive values all become 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
