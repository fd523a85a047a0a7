package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counters tracks classification outcomes.
type Counters struct {
	mu       sync.RWMutex
	byLabel  map[string]*atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
	reloads  atomic.Int64
}

// NewCounters creates an empty counter set.
func NewCounters() *Counters {
	return &Counters{byLabel: make(map[string]*atomic.Int64)}
}

// IncLabel counts one prediction of label.
func (c *Counters) IncLabel(label string) {
	c.mu.RLock()
	n, ok := c.byLabel[label]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		if n, ok = c.byLabel[label]; !ok {
			n = new(atomic.Int64)
			c.byLabel[label] = n
		}
		c.mu.Unlock()
	}
	n.Add(1)
}

func (c *Counters) CacheHit()  { c.hits.Add(1) }
func (c *Counters) CacheMiss() { c.misses.Add(1) }
func (c *Counters) Failure()   { c.failures.Add(1) }
func (c *Counters) Reload()    { c.reloads.Add(1) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Labels      map[string]int64 `json:"labels"`
	LabelOrder  []string         `json:"-"`
	CacheHits   int64            `json:"cache_hits"`
	CacheMisses int64            `json:"cache_misses"`
	Failures    int64            `json:"failures"`
	Reloads     int64            `json:"reloads"`
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() Snapshot {
	c.mu.RLock()
	labels := make(map[string]int64, len(c.byLabel))
	order := make([]string, 0, len(c.byLabel))
	for k, v := range c.byLabel {
		labels[k] = v.Load()
		order = append(order, k)
	}
	c.mu.RUnlock()
	sort.Strings(order)

	return Snapshot{
		Labels:      labels,
		LabelOrder:  order,
		CacheHits:   c.hits.Load(),
		CacheMisses: c.misses.Load(),
		Failures:    c.failures.Load(),
		Reloads:     c.reloads.Load(),
	}
}
