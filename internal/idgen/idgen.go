// Package idgen hands out integer identifiers derived from the wall clock.
package idgen

import (
	"sync/atomic"
	"time"
)

// Generator produces strictly increasing millisecond-based ids. When two
// calls land in the same millisecond the later one is bumped by one, so ids
// never repeat within a process.
type Generator struct {
	last atomic.Int64
	now  func() time.Time
}

// New returns a Generator backed by time.Now.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock returns a Generator that reads time from now.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns the next id.
func (g *Generator) Next() int64 {
	for {
		prev := g.last.Load()
		next := g.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if g.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Observe moves the generator past id so later calls never return it.
func (g *Generator) Observe(id int64) {
	for {
		prev := g.last.Load()
		if id <= prev || g.last.CompareAndSwap(prev, id) {
			return
		}
	}
}
