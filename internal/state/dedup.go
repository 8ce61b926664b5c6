// Package state provides report persistence and seen-URL tracking.
package state

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Deduplicator tracks already-seen URL patterns. A Bloom filter answers
// the common miss case cheaply; an exact set resolves the filter's false
// positives so membership answers are always correct.
type Deduplicator struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	exact  map[string]struct{}
	count  int
}

// NewDeduplicator sizes the filter for the expected number of distinct
// patterns. Captures from busy pages can run into the tens of thousands
// of URLs.
func NewDeduplicator(estimatedItems int) *Deduplicator {
	if estimatedItems < 1000 {
		estimatedItems = 1000
	}
	return &Deduplicator{
		filter: bloom.NewWithEstimates(uint(estimatedItems), 0.001),
		exact:  make(map[string]struct{}),
	}
}

// Seen records a pattern and reports whether it was already present.
func (d *Deduplicator) Seen(pattern string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.filter.TestString(pattern) {
		if _, ok := d.exact[pattern]; ok {
			return true
		}
	}
	d.filter.AddString(pattern)
	d.exact[pattern] = struct{}{}
	d.count++
	return false
}

// Has reports membership without recording.
func (d *Deduplicator) Has(pattern string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.filter.TestString(pattern) {
		return false
	}
	_, ok := d.exact[pattern]
	return ok
}

// Count returns the number of distinct patterns recorded.
func (d *Deduplicator) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.count
}

// Reset clears the tracker for a new capture session.
func (d *Deduplicator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter.ClearAll()
	d.exact = make(map[string]struct{})
	d.count = 0
}
