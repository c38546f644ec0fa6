package pagination

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Request selects a 1-based page of a listing.
type Request struct {
	Page     int
	PageSize int
}

// Normalize clamps the page to sane bounds.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = 1
	}
	switch {
	case r.PageSize <= 0:
		r.PageSize = DefaultPageSize
	case r.PageSize > MaxPageSize:
		r.PageSize = MaxPageSize
	}
	return r
}

// Offset is the number of rows skipped before the page.
func (r Request) Offset() int {
	n := r.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit is the maximum number of rows on the page.
func (r Request) Limit() int {
	return r.Normalize().PageSize
}

// Page is one slice of a listing plus the size of the full result.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// NewPage assembles a page for the given request.
func NewPage[T any](items []T, total int64, req Request) Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: req.Page, PageSize: req.PageSize}
}

// Slice cuts an in-memory result down to the requested page.
func Slice[T any](all []T, req Request) Page[T] {
	offset, limit := req.Offset(), req.Limit()
	total := int64(len(all))
	if offset >= len(all) {
		return NewPage[T](nil, total, req)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return NewPage(all[offset:end], total, req)
}

// Map converts the items of a page, keeping its bounds.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return Page[U]{Items: out, Total: p.Total, Page: p.Page, PageSize: p.PageSize}
}

// HasNext reports whether further pages exist.
func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Total
}
