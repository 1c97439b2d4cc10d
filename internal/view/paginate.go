package view

// Paginator tracks one paged key set. Pages are 1-based.
type Paginator struct {
	Size    int
	Current int
	Total   int
	count   int
}

// NewPaginator returns a paginator on page 1 with no pages.
func NewPaginator(size int) *Paginator {
	if size < 1 {
		size = 1
	}
	return &Paginator{Size: size, Current: 1}
}

// Resize recomputes the page count for n keys and clamps Current into
// [1, Total]. With no keys, Current is 1 and Total is 0.
func (p *Paginator) Resize(n int) {
	p.count = n
	if n <= 0 {
		p.count = 0
		p.Current = 1
		p.Total = 0
		return
	}
	p.Total = (n + p.Size - 1) / p.Size
	if p.Current > p.Total {
		p.Current = p.Total
	}
	if p.Current < 1 {
		p.Current = 1
	}
}

// Next advances one page. Returns false on the last page.
func (p *Paginator) Next() bool {
	if p.Current >= p.Total {
		return false
	}
	p.Current++
	return true
}

// Prev goes back one page. Returns false on the first page.
func (p *Paginator) Prev() bool {
	if p.Current <= 1 {
		return false
	}
	p.Current--
	return true
}

// GoTo jumps to page. Returns false, leaving Current alone, when page is out
// of range or already current.
func (p *Paginator) GoTo(page int) bool {
	if page < 1 || page > p.Total || page == p.Current {
		return false
	}
	p.Current = page
	return true
}

// First resets to page 1.
func (p *Paginator) First() {
	p.Current = 1
}

// Window returns the slice of keys on the current page.
func (p *Paginator) Window(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	start := (p.Current - 1) * p.Size
	if start >= len(keys) {
		return nil
	}
	end := start + p.Size
	if end > len(keys) {
		end = len(keys)
	}
	return keys[start:end]
}

// Info reports the paginator position.
func (p *Paginator) Info() PageInfo {
	return PageInfo{Paged: true, Current: p.Current, Total: p.Total, Size: p.Size, Keys: p.count}
}
