package domain

// Page is one window of an ordered result set. Page numbers start at 1.
type Page[T any] struct {
	Items     []T `json:"items"`
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	PageCount int `json:"page_count"`
	Total     int `json:"total"`
}

// NewPage assembles a page, always returning a non-nil item slice.
func NewPage[T any](items []T, page, pageSize, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:     items,
		Page:      page,
		PageSize:  pageSize,
		PageCount: PageCount(total, pageSize),
		Total:     total,
	}
}

// PageCount returns max(1, ceil(total/pageSize)). A non-positive pageSize counts as 1.
func PageCount(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, pageCount].
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	switch {
	case page < 1:
		return 1
	case page > pageCount:
		return pageCount
	default:
		return page
	}
}

// Window clamps page and pageSize to at least 1 and returns the row offset and limit.
// The offset is never negative.
func Window(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return (page - 1) * pageSize, pageSize
}
