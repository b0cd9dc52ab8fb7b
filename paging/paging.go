// Package paging computes page windows over an in-memory list and the state
// of the page controls shown beneath it.
package paging

const (
	// DefaultSize is the number of items per page.
	DefaultSize = 5
	// DefaultWindow is the number of page buttons shown at once.
	DefaultWindow = 10
)

// Controls describes the page controls for one render.
type Controls struct {
	Current      int
	TotalPages   int
	Pages        []int // page numbers to render as buttons, ascending
	PrevDisabled bool
	NextDisabled bool
}

// Page is the visible slice of a list together with its controls.
type Page[T any] struct {
	Items    []T
	Total    int
	Controls Controls
}

// Empty reports whether the page has nothing to show.
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}

// Pager paginates with a fixed page size and button window.
type Pager struct {
	Size   int
	Window int
}

// Default returns the 5-per-page, 10-button pager.
func Default() Pager {
	return Pager{Size: DefaultSize, Window: DefaultWindow}
}

func (p Pager) size() int {
	if p.Size < 1 {
		return DefaultSize
	}
	return p.Size
}

func (p Pager) window() int {
	if p.Window < 1 {
		return DefaultWindow
	}
	return p.Window
}

// TotalPages returns ceil(total/size); 0 for an empty list.
func (p Pager) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	n := p.size()
	return (total + n - 1) / n
}

// Bounds returns the half-open index range [start, end) of page current
// within a list of total items. Out of range pages yield an empty range.
func (p Pager) Bounds(current, total int) (start, end int) {
	if current < 1 {
		current = 1
	}
	n := p.size()
	start = (current - 1) * n
	if start > total {
		start = total
	}
	end = start + n
	if end > total {
		end = total
	}
	return start, end
}

// Buttons returns the inclusive range of page buttons for current. The range
// starts one past a multiple of the window width and never exceeds
// totalPages; end < start when there are no pages.
func (p Pager) Buttons(current, totalPages int) (start, end int) {
	if current < 1 {
		current = 1
	}
	w := p.window()
	start = (current-1)/w*w + 1
	end = start + w - 1
	if end > totalPages {
		end = totalPages
	}
	return start, end
}

// Controls computes the control state for current over total items.
func (p Pager) Controls(current, total int) Controls {
	if current < 1 {
		current = 1
	}
	pages := p.TotalPages(total)
	c := Controls{
		Current:      current,
		TotalPages:   pages,
		PrevDisabled: current == 1,
		NextDisabled: current >= pages,
	}
	if total == 0 {
		return c
	}
	start, end := p.Buttons(current, pages)
	for i := start; i <= end; i++ {
		c.Pages = append(c.Pages, i)
	}
	return c
}

// Paginate cuts page current out of items. A page past the end renders like
// an empty list: no items and no page buttons.
func Paginate[T any](p Pager, items []T, current int) Page[T] {
	start, end := p.Bounds(current, len(items))
	visible := end - start
	total := len(items)
	if visible == 0 {
		total = 0
	}
	return Page[T]{
		Items:    items[start:end],
		Total:    len(items),
		Controls: p.Controls(current, total),
	}
}

// Prev returns the page before current, or current when already first.
func Prev(current int) int {
	if current > 1 {
		return current - 1
	}
	return current
}

// Next returns the page after current, or current when already last.
func Next(current, totalPages int) int {
	if current < totalPages {
		return current + 1
	}
	return current
}
