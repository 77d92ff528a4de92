// Package preview implements the incremental preview renderer: a
// viewport-aware, zoom-aware cache of rendered page images that
// recomputes only the pages whose visibility has plausibly changed.
package preview

import (
	"sync"
)

// PageRecord is the cached render state for one page. Geometry is
// always known; Pixels is nil for a placeholder that has not been
// rasterized. Pixels is replaced wholesale, never partially mutated.
type PageRecord struct {
	WidthPt  float64
	HeightPt float64
	Pixels   []byte
}

// Rendered reports whether the page has rasterized pixels.
func (r PageRecord) Rendered() bool {
	return r.Pixels != nil
}

// Cache is the ordered sequence of per-page render records. The full
// record vector is replaced atomically on render completion; there is
// no incremental mutation.
type Cache struct {
	records  []PageRecord
	mutex    sync.RWMutex
	watchers []chan struct{}
}

// NewCache creates an empty page cache.
func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps in a new record vector wholesale and notifies watchers.
func (c *Cache) Replace(records []PageRecord) {
	c.mutex.Lock()
	c.records = records
	watchers := c.watchers
	c.mutex.Unlock()

	for _, w := range watchers {
		select {
		case w <- struct{}{}:
		default:
			// Skip if channel is full
		}
	}
}

// Snapshot returns a copy of the current record vector.
func (c *Cache) Snapshot() []PageRecord {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]PageRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Page returns the record at index, bounds-checked.
func (c *Cache) Page(index int) (PageRecord, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if index < 0 || index >= len(c.records) {
		return PageRecord{}, false
	}
	return c.records[index], true
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.records)
}

// Watch returns a channel that receives a signal on every replacement.
func (c *Cache) Watch() <-chan struct{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	ch := make(chan struct{}, 1)
	c.watchers = append(c.watchers, ch)
	return ch
}
