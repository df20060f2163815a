// Package pagination slices full API lists into pages for the back-office tables.
package pagination

// DefaultSize is the back-office page size
const DefaultSize = 10

// Page is one page of items
type Page[T any] struct {
	Items      []T
	Number     int // 1-based, clamped to [1, Pages]
	Size       int
	Total      int
	Pages      int // at least 1
	HasPrev    bool
	HasNext    bool
	FirstIndex int // 1-based position of the first item, 0 when empty
}

// Paginate returns page number of items. Out of range pages are clamped and a
// non-positive size falls back to DefaultSize.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	number = max(1, min(number, pages))

	start := (number - 1) * size
	end := min(start+size, total)

	p := Page[T]{
		Items:   items[start:end:end],
		Number:  number,
		Size:    size,
		Total:   total,
		Pages:   pages,
		HasPrev: number > 1,
		HasNext: number < pages,
	}
	if total > 0 {
		p.FirstIndex = start + 1
	}
	return p
}

// PrevNumber is the previous page number, or the current one on the first page
func (p Page[T]) PrevNumber() int { return max(1, p.Number-1) }

// NextNumber is the next page number, or the current one on the last page
func (p Page[T]) NextNumber() int { return min(p.Pages, p.Number+1) }
