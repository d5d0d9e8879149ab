package service

import "github.com/supportdesk/support-system/internal/core/ports"

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// normalizePage clamps page to >= 1 and size to [1, maxPageSize], using
// defaultPageSize when size is unset.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}
	return page, size
}

func newPagination(page, size int, total int64) ports.Pagination {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return ports.Pagination{Page: page, PageSize: size, Total: total, Pages: pages}
}
