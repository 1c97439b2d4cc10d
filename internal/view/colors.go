package view

// Color is a hex color string such as "#3e95cd".
type Color string

// Palette is the fixed series palette. Keys past the end wrap around.
var Palette = []Color{
	"#3e95cd", "#8e5ea2", "#3cba9f", "#e8c3b9", "#c45850",
	"#ff6384", "#36a2eb", "#cc65fe", "#ffce56", "#4bc0c0",
	"#007bff", "#6610f2", "#6f42c1", "#e83e8c", "#dc3545",
	"#fd7e14", "#ffc107", "#28a745", "#20c997", "#17a2b8",
}

// ColorAllocator binds series keys to palette colors in first-seen order.
// A bound key never changes color. Not safe for concurrent use; the dashboard
// event loop owns each allocator.
type ColorAllocator struct {
	palette  []Color
	assigned map[string]Color
}

// NewColorAllocator returns an allocator over palette, or Palette when empty.
func NewColorAllocator(palette []Color) *ColorAllocator {
	if len(palette) == 0 {
		palette = Palette
	}
	return &ColorAllocator{
		palette:  palette,
		assigned: make(map[string]Color),
	}
}

// ColorFor returns the color bound to key, binding the next palette entry
// if key is new. The n-th distinct key gets palette[(n-1) mod len(palette)].
func (a *ColorAllocator) ColorFor(key string) Color {
	if c, ok := a.assigned[key]; ok {
		return c
	}
	c := a.palette[len(a.assigned)%len(a.palette)]
	a.assigned[key] = c
	return c
}

// Preseed binds keys in the given order, skipping ones already bound.
func (a *ColorAllocator) Preseed(keys []string) {
	for _, k := range keys {
		a.ColorFor(k)
	}
}
