package shared

import "math"

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	PageCount     int `json:"pageCount"`
	TotalDocument int `json:"totalDocument"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, pageSize, total int) Pagination {
	if pageSize <= 0 {
		pageSize = 10
	}
	if page <= 0 {
		page = 1
	}
	pageCount := int(math.Ceil(float64(total) / float64(pageSize)))
	return Pagination{Page: page, PageSize: pageSize, PageCount: pageCount, TotalDocument: total}
}
