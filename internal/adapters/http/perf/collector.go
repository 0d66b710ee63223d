package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCapacity is the number of samples kept when none is given.
const DefaultCapacity = 4096

// Kind separates HTTP requests from store operations.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Sample is one timed request or store call.
type Sample struct {
	Kind       Kind
	Name       string // "GET /vote" or "kv.Get"
	StatusCode int
	DurationMs float64
	At         time.Time
}

// Collector keeps the most recent samples in a ring.
// Record never blocks on aggregation; Snapshot does the work.
type Collector struct {
	mu      sync.Mutex
	ring    []Sample
	next    int
	written atomic.Int64
}

// NewCollector allocates a ring of the given capacity.
// PRE: none
// POST: capacity <= 0 falls back to DefaultCapacity
func NewCollector(capacity int) *Collector {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Collector{ring: make([]Sample, capacity)}
}

// Record stores s, overwriting the oldest sample when the ring is full.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.ring[c.next] = s
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.written.Add(1)
}

// Written returns how many samples were ever recorded.
func (c *Collector) Written() int64 {
	return c.written.Load()
}

// OpStat aggregates samples sharing a name.
type OpStat struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs float64 `json:"max_ms"`
}

// Snapshot is the aggregated view served on the organiser perf endpoint.
type Snapshot struct {
	Written        int64    `json:"written"`
	RequestP50Ms   float64  `json:"request_p50_ms"`
	RequestP95Ms   float64  `json:"request_p95_ms"`
	SlowestRoutes  []OpStat `json:"slowest_routes"`
	SlowestQueries []OpStat `json:"slowest_queries"`
}

// Snapshot aggregates samples recorded at or after since.
// PRE: topN > 0
// POST: lists are sorted by average duration, longest first, at most topN long
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Sample, len(c.ring))
	copy(buf, c.ring)
	c.mu.Unlock()

	routes := map[string]*OpStat{}
	queries := map[string]*OpStat{}
	var durations []float64
	for _, s := range buf {
		if s.At.IsZero() || s.At.Before(since) {
			continue
		}
		group := queries
		if s.Kind == KindRequest {
			group = routes
			durations = append(durations, s.DurationMs)
		}
		st, ok := group[s.Name]
		if !ok {
			st = &OpStat{Name: s.Name}
			group[s.Name] = st
		}
		st.Count++
		st.AvgMs += s.DurationMs
		st.MaxMs = math.Max(st.MaxMs, s.DurationMs)
	}

	snap := Snapshot{
		Written:        c.Written(),
		SlowestRoutes:  rank(routes, topN),
		SlowestQueries: rank(queries, topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = quantile(durations, 0.50)
		snap.RequestP95Ms = quantile(durations, 0.95)
	}
	return snap
}

// quantile interpolates linearly between the two nearest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// rank turns accumulated totals into averages and keeps the slowest n.
func rank(stats map[string]*OpStat, n int) []OpStat {
	out := make([]OpStat, 0, len(stats))
	for _, st := range stats {
		st.AvgMs /= float64(st.Count)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs == out[j].AvgMs {
			return out[i].Name < out[j].Name
		}
		return out[i].AvgMs > out[j].AvgMs
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
