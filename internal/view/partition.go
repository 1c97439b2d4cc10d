// Package view turns a filtered set of readings into chart-ready series.
//
// The Partitioner picks one of four modes from which filter dimensions are
// pinned, groups readings into charts and series in lexicographic key order,
// and pages the grouping keys where the mode calls for it. Colors come from
// two ColorAllocators, one for sensor types and one for locations, so a
// series keeps its color across recomputes and page changes.
package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// Mode is the presentation strategy for the current filter.
type Mode int

const (
	// ModeLocationGrid shows one chart per location, one line per sensor type.
	ModeLocationGrid Mode = iota
	// ModeLocationLines shows one chart for a pinned sensor type, one line per location.
	ModeLocationLines
	// ModeTypeLines shows one chart for a pinned location, one line per sensor type.
	ModeTypeLines
	// ModeSingle shows the one pinned (sensor type, location) pair.
	ModeSingle
)

func (m Mode) String() string {
	switch m {
	case ModeLocationGrid:
		return "location grid"
	case ModeLocationLines:
		return "locations for type"
	case ModeTypeLines:
		return "types for location"
	case ModeSingle:
		return "single series"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ModeFor selects the mode from which dimensions f pins.
func ModeFor(f sensor.Filter) Mode {
	switch {
	case f.PinsSensorType() && f.PinsLocation():
		return ModeSingle
	case f.PinsSensorType():
		return ModeLocationLines
	case f.PinsLocation():
		return ModeTypeLines
	default:
		return ModeLocationGrid
	}
}

// Point is one plotted sample. X is epoch milliseconds.
type Point struct {
	X int64
	Y float64
}

// Time returns X as a time.
func (p Point) Time() time.Time {
	return time.UnixMilli(p.X)
}

// Series is one plotted line. A placeholder series has no points and stands in
// for a group with no matching readings.
type Series struct {
	Key         string
	Label       string
	Color       Color
	Points      []Point
	Placeholder bool
}

// Chart is one plot holding one or more series.
type Chart struct {
	Title  string
	Series []Series
}

// Empty reports whether every series in the chart is a placeholder.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		if !s.Placeholder {
			return false
		}
	}
	return true
}

// PageInfo describes the paginator driving the current mode. Paged is false
// for modes that show everything at once.
type PageInfo struct {
	Paged   bool
	Current int
	Total   int
	Size    int
	Keys    int
}

// Snapshot is the immutable output of one partition pass.
type Snapshot struct {
	Mode   Mode
	Filter sensor.Filter
	Charts []Chart
	Page   PageInfo
}

// SeriesCount returns the number of non-placeholder series across all charts.
func (s Snapshot) SeriesCount() int {
	n := 0
	for _, c := range s.Charts {
		for _, ser := range c.Series {
			if !ser.Placeholder {
				n++
			}
		}
	}
	return n
}

// Config sizes the paginators and the per-series point window.
type Config struct {
	GridPageSize  int // locations per page in ModeLocationGrid
	LinesPageSize int // lines per page in ModeLocationLines
	MaxPoints     int // newest points kept per series; 0 keeps all
}

// DefaultConfig matches the dashboard layout: three location charts per page,
// five lines per page, and an unbounded point window.
func DefaultConfig() Config {
	return Config{GridPageSize: 3, LinesPageSize: 5}
}

// Partitioner owns the color allocators and paginators for one dashboard.
// Not safe for concurrent use.
type Partitioner struct {
	variables *ColorAllocator
	locations *ColorAllocator
	grid      *Paginator
	lines     *Paginator
	maxPoints int
	mode      Mode
}

// NewPartitioner creates a partitioner with fresh allocators and paginators.
func NewPartitioner(cfg Config) *Partitioner {
	if cfg.GridPageSize < 1 {
		cfg.GridPageSize = DefaultConfig().GridPageSize
	}
	if cfg.LinesPageSize < 1 {
		cfg.LinesPageSize = DefaultConfig().LinesPageSize
	}
	return &Partitioner{
		variables: NewColorAllocator(nil),
		locations: NewColorAllocator(nil),
		grid:      NewPaginator(cfg.GridPageSize),
		lines:     NewPaginator(cfg.LinesPageSize),
		maxPoints: cfg.MaxPoints,
	}
}

// Variables returns the sensor-type color allocator.
func (p *Partitioner) Variables() *ColorAllocator { return p.variables }

// Locations returns the location color allocator.
func (p *Partitioner) Locations() *ColorAllocator { return p.locations }

// Mode returns the mode of the last partition pass.
func (p *Partitioner) Mode() Mode { return p.mode }

// ResetPages moves both paginators back to page 1. Called on filter change.
func (p *Partitioner) ResetPages() {
	p.grid.First()
	p.lines.First()
}

// NextPage advances the paginator of the current mode.
func (p *Partitioner) NextPage() bool {
	if pg := p.pager(); pg != nil {
		return pg.Next()
	}
	return false
}

// PrevPage steps back the paginator of the current mode.
func (p *Partitioner) PrevPage() bool {
	if pg := p.pager(); pg != nil {
		return pg.Prev()
	}
	return false
}

// GoToPage jumps the paginator of the current mode. Out-of-range pages are ignored.
func (p *Partitioner) GoToPage(page int) bool {
	if pg := p.pager(); pg != nil {
		return pg.GoTo(page)
	}
	return false
}

func (p *Partitioner) pager() *Paginator {
	switch p.mode {
	case ModeLocationGrid:
		return p.grid
	case ModeLocationLines:
		return p.lines
	default:
		return nil
	}
}

// Partition rebuilds the view for f from readings. readings should already
// satisfy f; readings outside the pinned dimensions are ignored regardless.
// The result shares no slices with earlier snapshots.
func (p *Partitioner) Partition(f sensor.Filter, readings []sensor.Reading) Snapshot {
	p.mode = ModeFor(f)
	snap := Snapshot{Mode: p.mode, Filter: f}

	switch p.mode {
	case ModeLocationGrid:
		snap.Charts, snap.Page = p.locationGrid(readings)
	case ModeLocationLines:
		snap.Charts, snap.Page = p.locationLines(f.SensorType, readings)
	case ModeTypeLines:
		snap.Charts = []Chart{p.typeLines(f.Location, readings)}
	case ModeSingle:
		snap.Charts = []Chart{p.single(f.SensorType, f.Location, readings)}
	}
	return snap
}

func (p *Partitioner) locationGrid(readings []sensor.Reading) ([]Chart, PageInfo) {
	byLocation := groupBy(readings, func(r sensor.Reading) string { return r.Location })
	keys := sortedKeys(byLocation)
	p.grid.Resize(len(keys))

	if len(keys) == 0 {
		return []Chart{placeholderChart("All locations", "No data for the current filters")}, p.grid.Info()
	}

	var charts []Chart
	for _, loc := range p.grid.Window(keys) {
		byType := groupBy(byLocation[loc], func(r sensor.Reading) string { return r.SensorType })
		chart := Chart{Title: loc}
		for _, typ := range sortedKeys(byType) {
			chart.Series = append(chart.Series, Series{
				Key:    typ,
				Label:  typ,
				Color:  p.variables.ColorFor(typ),
				Points: p.points(byType[typ]),
			})
		}
		if len(chart.Series) == 0 {
			chart.Series = []Series{placeholder("No data")}
		}
		charts = append(charts, chart)
	}
	return charts, p.grid.Info()
}

func (p *Partitioner) locationLines(sensorType string, readings []sensor.Reading) ([]Chart, PageInfo) {
	matching := keep(readings, func(r sensor.Reading) bool { return r.SensorType == sensorType })
	byLocation := groupBy(matching, func(r sensor.Reading) string { return r.Location })
	keys := sortedKeys(byLocation)
	p.lines.Resize(len(keys))

	chart := Chart{Title: sensorType}
	if p.lines.Total > 1 {
		chart.Title = fmt.Sprintf("%s (page %d/%d)", sensorType, p.lines.Current, p.lines.Total)
	}
	for _, loc := range p.lines.Window(keys) {
		chart.Series = append(chart.Series, Series{
			Key:    loc,
			Label:  fmt.Sprintf("%s (%s)", loc, sensorType),
			Color:  p.locations.ColorFor(loc),
			Points: p.points(byLocation[loc]),
		})
	}
	if len(chart.Series) == 0 {
		chart.Series = []Series{placeholder(fmt.Sprintf("No data for %s", sensorType))}
	}
	return []Chart{chart}, p.lines.Info()
}

func (p *Partitioner) typeLines(location string, readings []sensor.Reading) Chart {
	matching := keep(readings, func(r sensor.Reading) bool { return r.Location == location })
	byType := groupBy(matching, func(r sensor.Reading) string { return r.SensorType })

	chart := Chart{Title: location}
	for _, typ := range sortedKeys(byType) {
		chart.Series = append(chart.Series, Series{
			Key:    typ,
			Label:  typ,
			Color:  p.variables.ColorFor(typ),
			Points: p.points(byType[typ]),
		})
	}
	if len(chart.Series) == 0 {
		chart.Series = []Series{placeholder(fmt.Sprintf("No data for %s", location))}
	}
	return chart
}

func (p *Partitioner) single(sensorType, location string, readings []sensor.Reading) Chart {
	matching := keep(readings, func(r sensor.Reading) bool {
		return r.SensorType == sensorType && r.Location == location
	})
	label := fmt.Sprintf("%s (%s)", sensorType, location)
	s := Series{
		Key:    sensorType,
		Label:  label,
		Color:  p.variables.ColorFor(sensorType),
		Points: p.points(matching),
	}
	if len(s.Points) == 0 {
		s.Placeholder = true
	}
	return Chart{Title: label, Series: []Series{s}}
}

// points sorts readings by timestamp and applies the tail window.
func (p *Partitioner) points(readings []sensor.Reading) []Point {
	sorted := make([]sensor.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	if p.maxPoints > 0 && len(sorted) > p.maxPoints {
		sorted = sorted[len(sorted)-p.maxPoints:]
	}
	pts := make([]Point, len(sorted))
	for i, r := range sorted {
		pts[i] = Point{X: r.Timestamp.UnixMilli(), Y: r.Value}
	}
	return pts
}

func placeholder(label string) Series {
	return Series{Label: label, Placeholder: true}
}

func placeholderChart(title, label string) Chart {
	return Chart{Title: title, Series: []Series{placeholder(label)}}
}

func groupBy(readings []sensor.Reading, key func(sensor.Reading) string) map[string][]sensor.Reading {
	out := make(map[string][]sensor.Reading)
	for _, r := range readings {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}

func keep(readings []sensor.Reading, pred func(sensor.Reading) bool) []sensor.Reading {
	var out []sensor.Reading
	for _, r := range readings {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(m map[string][]sensor.Reading) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
