package alert

// DefaultHistorySize bounds the rolling alert list.
const DefaultHistorySize = 20

// History is a bounded, newest-first list of recent notices. Not safe for
// concurrent use.
type History struct {
	size  int
	items []Notice
}

// NewHistory returns a history holding at most size notices.
func NewHistory(size int) *History {
	if size < 1 {
		size = DefaultHistorySize
	}
	return &History{size: size}
}

// Add puts n at the front, dropping the oldest notice past the bound.
func (h *History) Add(n Notice) {
	items := make([]Notice, 0, h.size)
	items = append(items, n)
	for _, old := range h.items {
		if len(items) == h.size {
			break
		}
		items = append(items, old)
	}
	h.items = items
}

// List returns the notices newest-first. The slice is a copy.
func (h *History) List() []Notice {
	out := make([]Notice, len(h.items))
	copy(out, h.items)
	return out
}
