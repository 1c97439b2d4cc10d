// Package buffer holds the session's raw reading history and derives filtered
// views from it.
//
// Live readings are append-only and never evicted. The historical batch is
// replaced wholesale each time history is fetched again. Filtering re-scans
// everything on every call, which is fine for a session-scoped dashboard and
// is the first thing to revisit if sessions grow long.
package buffer

import (
	"sort"

	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

// Buffer is the unbounded in-memory reading history. Not safe for concurrent
// use; the dashboard event loop owns it.
type Buffer struct {
	history []sensor.Reading
	live    []sensor.Reading
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Ingest appends a live reading. Duplicates are kept, including ones that
// also show up in a later historical batch.
func (b *Buffer) Ingest(r sensor.Reading) {
	b.live = append(b.live, r)
}

// Seed replaces the historical batch with rs. Live readings are kept.
func (b *Buffer) Seed(rs []sensor.Reading) {
	b.history = append([]sensor.Reading(nil), rs...)
}

// Len returns the number of readings held.
func (b *Buffer) Len() int {
	return len(b.history) + len(b.live)
}

// Apply returns the readings matching f, historical batch first, then live
// readings in arrival order. The result is a fresh slice.
func (b *Buffer) Apply(f sensor.Filter) []sensor.Reading {
	out := make([]sensor.Reading, 0, b.Len())
	for _, set := range [][]sensor.Reading{b.history, b.live} {
		for _, r := range set {
			if f.Matches(r) {
				out = append(out, r)
			}
		}
	}
	return out
}

// Recent returns up to n readings from rs, newest timestamp first. Ties keep
// the later-ingested reading first.
func Recent(rs []sensor.Reading, n int) []sensor.Reading {
	if n <= 0 || len(rs) == 0 {
		return nil
	}
	out := make([]sensor.Reading, len(rs))
	for i := range rs {
		out[i] = rs[len(rs)-1-i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
