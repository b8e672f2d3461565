package domain

// PageSizeMenu is the fixed set of selectable page sizes.
var PageSizeMenu = []int{10, 25, 50, 100}

// DefaultPageSize is the page size of a fresh session.
const DefaultPageSize = 25

// IsValidPageSize reports whether n is one of the selectable page sizes.
func IsValidPageSize(n int) bool {
	for _, s := range PageSizeMenu {
		if s == n {
			return true
		}
	}
	return false
}

// PageState is the pagination state of one session: a 1-based page number and
// a page size from the fixed menu. Transitions return new values rather than
// mutating; the caller is expected to Reconcile against the current total
// count before computing an offset, which keeps the page number inside
// [1, max(1, ceil(total/size))] as the filtered set shrinks or grows.
type PageState struct {
	Page int
	Size int
}

// NewPageState returns the initial state: page 1 at the default size.
func NewPageState() PageState {
	return PageState{Page: 1, Size: DefaultPageSize}
}

// Next advances one page, clamped to the maximum page for total.
func (p PageState) Next(total int64) PageState {
	reconciled := p.Reconcile(total)
	if reconciled.Page < reconciled.maxPage(total) {
		reconciled.Page++
	}
	return reconciled
}

// Previous steps back one page; a no-op on page 1.
func (p PageState) Previous() PageState {
	if p.Page > 1 {
		p.Page--
	}
	return p
}

// Reset returns to page 1, keeping the page size.
func (p PageState) Reset() PageState {
	p.Page = 1
	return p
}

// WithSize changes the page size and resets to page 1. Sizes outside the
// fixed menu leave the state unchanged.
func (p PageState) WithSize(size int) PageState {
	if !IsValidPageSize(size) {
		return p
	}
	return PageState{Page: 1, Size: size}
}

// Reconcile clamps the page number into the valid range for total. It is
// invoked after every count recomputation so the window never runs past the
// end of a shrinking result set.
func (p PageState) Reconcile(total int64) PageState {
	if p.Page < 1 {
		p.Page = 1
	}
	if max := p.maxPage(total); p.Page > max {
		p.Page = max
	}
	return p
}

// Offset is the row offset of the current window.
func (p PageState) Offset() int {
	return (p.Page - 1) * p.Size
}

// MaxPage is the highest valid page number for total rows. An empty result
// set still has one (empty) page.
func (p PageState) MaxPage(total int64) int {
	return p.maxPage(total)
}

func (p PageState) maxPage(total int64) int {
	if total <= 0 {
		return 1
	}
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	if pages < 1 {
		pages = 1
	}
	return pages
}
