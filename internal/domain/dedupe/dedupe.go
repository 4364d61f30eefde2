// Package dedupe tracks match document codes already accepted during
// an ingest pass, so a match published in more than one source file is
// rated exactly once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rallyrank/rallyrank/pkg/metrics"
)

// Deduper records seen document codes.
type Deduper interface {
	// SeenAndRecord atomically checks whether code was seen and records
	// it if not. Returns true if code was already seen.
	SeenAndRecord(ctx context.Context, code string) bool

	Size() int64
}

type entry struct {
	code string
	next *entry
}

func (e *entry) reset() {
	e.code = ""
	e.next = nil
}

// memoryDeduper keeps codes in memory. Unbounded mode (the default,
// maxSize <= 0) is a plain set: an archive replay must never forget a
// code it has accepted, or a late duplicate would be rated twice.
// Bounded mode caps memory for long-running refresh loops, evicting
// the oldest code once full.
type memoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*entry
	newest  *entry
	maxSize int
	size    atomic.Int64
	pool    sync.Pool
}

// New creates an in-memory deduper. Unbounded unless WithMaxSize is given.
func New(opts ...Option) Deduper {
	d := &memoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*entry)
	if d.maxSize > 0 {
		d.pool = sync.Pool{
			New: func() interface{} {
				return &entry{}
			},
		}
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(ctx context.Context, code string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[code]; exists {
		metrics.RecordDuplicateMatch()
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}
		e := d.pool.Get().(*entry)
		e.code = code
		e.next = d.newest
		d.newest = e
		d.seen[code] = e
	} else {
		d.seen[code] = nil
	}
	d.size.Add(1)
	return false
}

// evictOldest drops the tail of the recency list. Caller holds d.mu.
func (d *memoryDeduper) evictOldest() {
	if d.newest == nil {
		return
	}

	if d.newest.next == nil {
		delete(d.seen, d.newest.code)
		d.newest.reset()
		d.pool.Put(d.newest)
		d.newest = nil
		d.size.Add(-1)
		return
	}

	prev := d.newest
	cur := d.newest.next
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}
	prev.next = nil
	delete(d.seen, cur.code)
	cur.reset()
	d.pool.Put(cur)
	d.size.Add(-1)
}

func (d *memoryDeduper) Size() int64 {
	return d.size.Load()
}
