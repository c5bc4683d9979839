package entities

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination is a normalised page request
type Pagination struct {
	Page     int
	PageSize int
}

// NewPagination clamps page to >= 1 and pageSize to [1, MaxPageSize],
// using DefaultPageSize when pageSize is not positive.
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size
func (p Pagination) Limit() int {
	return p.PageSize
}

// Meta builds the response metadata for total rows
func (p Pagination) Meta(total int) PageMeta {
	return NewPageMeta(total, p.Page, p.PageSize)
}

// PageMeta is the pagination block returned with list responses
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewPageMeta computes totalPages = ceil(total/pageSize)
func NewPageMeta(total, page, pageSize int) PageMeta {
	totalPages := 0
	if pageSize > 0 && total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PageMeta{Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}
}
