package cache

import (
	"container/list"
	"sync"
	"time"
)

// Entry is one rendered artefact: the bytes handed back to a tool caller,
// their MIME type and file extension.
type Entry struct {
	Data  []byte
	MIME  string
	Ext   string
	Pages int
}

// entryOverhead approximates the bookkeeping cost of one element.
const entryOverhead = 64

func (e Entry) size() int64 {
	return int64(len(e.Data)+len(e.MIME)+len(e.Ext)) + entryOverhead
}

type element struct {
	key     string
	entry   Entry
	size    int64
	expires time.Time
}

// LRU is a thread-safe least-recently-used cache bounded by item count and
// total byte size. Entries older than the TTL are dropped on access.
type LRU struct {
	mu           sync.Mutex
	maxItems     int
	maxSizeBytes int64
	ttl          time.Duration
	now          func() time.Time
	currentSize  int64
	items        map[string]*list.Element
	order        *list.List

	hits      int64
	misses    int64
	evictions int64
	expired   int64
}

// NewLRU creates an LRU. A zero limit or TTL means unlimited.
func NewLRU(maxItems int, maxSizeBytes int64, ttl time.Duration) *LRU {
	return &LRU{
		maxItems:     maxItems,
		maxSizeBytes: maxSizeBytes,
		ttl:          ttl,
		now:          time.Now,
		items:        make(map[string]*list.Element),
		order:        list.New(),
	}
}

// Get returns the entry for key and marks it most recently used.
func (c *LRU) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return Entry{}, false
	}
	el := elem.Value.(*element)
	if !el.expires.IsZero() && c.now().After(el.expires) {
		c.remove(elem)
		c.expired++
		c.misses++
		return Entry{}, false
	}
	c.order.MoveToFront(elem)
	c.hits++
	return el.entry, true
}

// Put adds or replaces the entry for key and returns how many entries were
// evicted to make room. A single entry larger than the byte limit is kept
// alone rather than rejected.
func (c *LRU) Put(key string, e Entry) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	size := e.size()

	if elem, ok := c.items[key]; ok {
		el := elem.Value.(*element)
		c.currentSize += size - el.size
		el.entry, el.size, el.expires = e, size, expires
		c.order.MoveToFront(elem)
	} else {
		c.items[key] = c.order.PushFront(&element{key: key, entry: e, size: size, expires: expires})
		c.currentSize += size
	}
	return c.evict()
}

func (c *LRU) evict() int {
	n := 0
	for c.order.Len() > 1 {
		over := (c.maxItems > 0 && c.order.Len() > c.maxItems) ||
			(c.maxSizeBytes > 0 && c.currentSize > c.maxSizeBytes)
		if !over {
			break
		}
		c.remove(c.order.Back())
		c.evictions++
		n++
	}
	return n
}

func (c *LRU) remove(elem *list.Element) {
	el := c.order.Remove(elem).(*element)
	delete(c.items, el.key)
	c.currentSize -= el.size
}

// Delete removes key and reports whether it was present.
func (c *LRU) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
		return true
	}
	return false
}

// Clear removes all entries. Counters are kept.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.currentSize = 0
}

func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Size returns the accounted byte size of all entries.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Items     int     `json:"items"`
	Size      int64   `json:"sizeBytes"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Expired   int64   `json:"expired"`
	HitRate   float64 `json:"hitRate"`
}

func (c *LRU) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Items:     c.order.Len(),
		Size:      c.currentSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// ResetStats zeroes the counters.
func (c *LRU) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses, c.evictions, c.expired = 0, 0, 0, 0
}
