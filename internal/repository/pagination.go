package repository

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a normalised page request.  Page is 1-based.
type Page struct {
	Page     int
	PageSize int
}

// NewPage applies defaults (1/10) to non-positive values and caps the
// page size at MaxPageSize.
func NewPage(page, size int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Page: page, PageSize: size}
}

// Offset is the number of rows to skip for LIMIT/OFFSET queries.
func (p Page) Offset() int { return (p.Page - 1) * p.PageSize }

// PageMeta is returned alongside every paginated list.
type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Meta builds the response metadata for total matching rows.
func (p Page) Meta(total int64) PageMeta {
	return PageMeta{Page: p.Page, PageSize: p.PageSize, Total: total, TotalPages: TotalPages(total, p.PageSize)}
}

// TotalPages returns ceil(total/size).  It is 0 when there are no rows.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
