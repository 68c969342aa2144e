package shared

import "math"

// DefaultPerPage is applied when a listing request carries no page size.
const DefaultPerPage = 20

// MaxPerPage caps the page size a caller may request.
const MaxPerPage = 100

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PageParams are raw pagination values as supplied by a caller.
type PageParams struct {
	Page  int
	Limit int
}

// LimitPaginationParams clamps caller-supplied pagination values into the
// supported range: page >= 1 and 1 <= limit <= MaxPerPage.
func LimitPaginationParams(p PageParams) PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > MaxPerPage {
		p.Limit = MaxPerPage
	}
	return p
}
