package store

import "github.com/rickgao/coin-tracker/internal/model"

// DefaultPageSize is used when Page is called with a non-positive size.
const DefaultPageSize = 20

// PageResult is one page of the filtered list.
type PageResult struct {
	Items   []model.Instrument
	Page    int // 1-based, clamped to [1, Pages]
	PerPage int
	Total   int // Filtered instruments across all pages
	Pages   int // At least 1
}

// Page slices Filtered into pages of size. Out-of-range pages are clamped.
func (s *Store) Page(page, size int) PageResult {
	return Paginate(s.Filtered(), page, size)
}

// Paginate slices list into pages of size. Out-of-range pages are clamped.
func Paginate(list []model.Instrument, page, size int) PageResult {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(list)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := (page - 1) * size
	end := min(start+size, total)

	return PageResult{
		Items:   list[start:end],
		Page:    page,
		PerPage: size,
		Total:   total,
		Pages:   pages,
	}
}
