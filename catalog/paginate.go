package catalog

// Page is one slice of a filtered sequence.
type Page[T any] struct {
	Items     []T `json:"items"`
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	PageCount int `json:"page_count"`
	Total     int `json:"total"`
}

// PageCount returns ceil(total / pageSize), or 0 for a non-positive page size.
func PageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate slices items for the 1-based page index. It does not clamp: a page outside
// [1, PageCount] yields an empty slice. Callers decide how to recover (see ClampPage).
func Paginate[T any](items []T, pageSize, page int) Page[T] {
	p := Page[T]{
		Items:     []T{},
		Page:      page,
		PageSize:  pageSize,
		PageCount: PageCount(len(items), pageSize),
		Total:     len(items),
	}
	if page < 1 || page > p.PageCount {
		return p
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end:end]
	return p
}

// ClampPage returns page when it is a valid index for pageCount and 1 otherwise.
func ClampPage(page, pageCount int) int {
	if page < 1 || page > pageCount {
		return 1
	}
	return page
}

// Ellipsis marks a gap in VisiblePages output.
const Ellipsis = 0

// visibleDelta is how many neighbours of the current page are shown on each side.
const visibleDelta = 2

// VisiblePages returns the page numbers a pager shows: the first and last page, the current page
// with up to two neighbours on each side, and Ellipsis where pages are skipped.
// It returns nil when there is at most one page.
func VisiblePages(current, total int) []int {
	if total <= 1 {
		return nil
	}
	current = ClampPage(current, total)

	pages := []int{1}
	lo := max(2, current-visibleDelta)
	hi := min(total-1, current+visibleDelta)
	if current-visibleDelta > 2 {
		pages = append(pages, Ellipsis)
	}
	for i := lo; i <= hi; i++ {
		pages = append(pages, i)
	}
	if current+visibleDelta < total-1 {
		pages = append(pages, Ellipsis)
	}
	return append(pages, total)
}
