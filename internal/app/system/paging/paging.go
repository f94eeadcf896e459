// internal/app/system/paging/paging.go
package paging

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/pagination"
)

// PageSize is the default number of rows shown in paged lists.
const PageSize = 20

// Page is a page-number window read with one row of look-ahead, so lists
// never need a total count.
type Page struct {
	pagination.Page
}

// New returns page n (1-based) of size rows.
func New(n, size int) Page {
	return Page{Page: pagination.New(n, size)}
}

// FromRequest reads ?page= and uses PageSize. A per_page value is clamped
// to PageSize.
func FromRequest(r *http.Request) Page {
	return Page{Page: pagination.FromRequestWithDefaults(r, PageSize, PageSize)}
}

// LimitPlusOne is the fetch size for look-ahead pagination
// (fetch one extra row to detect hasNext).
func (p Page) LimitPlusOne() int { return p.Limit() + 1 }

// Trim cuts a look-ahead fetch down to the page size and reports whether
// another page exists.
func Trim[T any](rows []T, p Page) ([]T, bool) {
	if len(rows) > p.PerPage {
		return rows[:p.PerPage], true
	}
	return rows, false
}

// Slice returns the rows of p from an in-memory list and whether more
// rows follow.
func Slice[T any](rows []T, p Page) ([]T, bool) {
	off := p.Offset()
	if off >= len(rows) {
		return nil, false
	}
	end := off + p.LimitPlusOne()
	if end > len(rows) {
		end = len(rows)
	}
	return Trim(rows[off:end], p)
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start    int // 1-based index of the first row shown (0 if none)
	End      int // 1-based index of the last row shown (0 if none)
	PrevPage int
	NextPage int
	HasPrev  bool
	HasNext  bool
}

// ComputeRange calculates display range values given the page, the number
// of rows shown and whether more rows follow.
func ComputeRange(p Page, shown int, hasNext bool) Range {
	rg := Range{PrevPage: p.Prev(), NextPage: p.Page.Page, HasPrev: p.HasPrev()}
	if shown == 0 {
		return rg
	}
	rg.Start = p.Offset() + 1
	rg.End = p.Offset() + shown
	rg.HasNext = hasNext
	if hasNext {
		rg.NextPage = p.Page.Page + 1
	}
	return rg
}
