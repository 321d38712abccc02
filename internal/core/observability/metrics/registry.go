// Package metrics keeps in-process counters, gauges and timers that the
// world, the server and the event bus report into and /healthz exports.
package metrics

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Registry hands out named metrics. Asking twice for the same name returns
// the same instance. A nil *Registry hands out no-op metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*value
	gauges   map[string]*value
	timers   map[string]*timer
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*value),
		gauges:   make(map[string]*value),
		timers:   make(map[string]*timer),
	}
}

func (r *Registry) Counter(name string) Counter {
	if r == nil {
		return nopValue{}
	}
	return getOrCreate(r, r.counters, name, func() *value { return &value{} })
}

func (r *Registry) Gauge(name string) Gauge {
	if r == nil {
		return nopValue{}
	}
	return getOrCreate(r, r.gauges, name, func() *value { return &value{} })
}

func (r *Registry) Timer(name string) Timer {
	if r == nil {
		return nopTimer{}
	}
	return getOrCreate(r, r.timers, name, func() *timer { return &timer{} })
}

func getOrCreate[T any](r *Registry, m map[string]T, name string, create func() T) T {
	r.mu.RLock()
	v, ok := m[name]
	r.mu.RUnlock()
	if ok {
		return v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok = m[name]; !ok {
		v = create()
		m[name] = v
	}
	return v
}

// Export returns every metric ordered by name.
func (r *Registry) Export() []Family {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	out := make([]Family, 0, len(r.counters)+len(r.gauges)+len(r.timers))
	for name, c := range r.counters {
		out = append(out, Family{Name: name, Kind: KindCounter, Value: c.Value()})
	}
	for name, g := range r.gauges {
		out = append(out, Family{Name: name, Kind: KindGauge, Value: g.Value()})
	}
	for name, t := range r.timers {
		out = append(out, Family{
			Name:  name,
			Kind:  KindTimer,
			Value: t.total().Seconds(),
			Count: t.Count(),
			Mean:  t.Mean().Seconds(),
			Max:   t.Max().Seconds(),
		})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// value is a float64 stored as bits; it backs both counters and gauges.
type value struct {
	bits atomic.Uint64
}

func (v *value) Add(delta float64) {
	for {
		old := v.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if v.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (v *value) Set(x float64)     { v.bits.Store(math.Float64bits(x)) }
func (v *value) Inc()              { v.Add(1) }
func (v *value) Dec()              { v.Add(-1) }
func (v *value) Sub(delta float64) { v.Add(-delta) }
func (v *value) Value() float64    { return math.Float64frombits(v.bits.Load()) }

type timer struct {
	count atomic.Uint64
	sum   atomic.Int64
	max   atomic.Int64
}

func (t *timer) Observe(d time.Duration) {
	t.count.Add(1)
	t.sum.Add(int64(d))
	for {
		cur := t.max.Load()
		if int64(d) <= cur || t.max.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

func (t *timer) Start() func() {
	start := time.Now()
	return func() { t.Observe(time.Since(start)) }
}

func (t *timer) Count() uint64 { return t.count.Load() }

func (t *timer) Mean() time.Duration {
	n := t.count.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(t.sum.Load() / int64(n))
}

func (t *timer) Max() time.Duration { return time.Duration(t.max.Load()) }

func (t *timer) total() time.Duration { return time.Duration(t.sum.Load()) }

type nopValue struct{}

func (nopValue) Set(float64)    {}
func (nopValue) Inc()           {}
func (nopValue) Dec()           {}
func (nopValue) Add(float64)    {}
func (nopValue) Sub(float64)    {}
func (nopValue) Value() float64 { return 0 }

type nopTimer struct{}

func (nopTimer) Observe(time.Duration) {}
func (nopTimer) Start() func()         { return func() {} }
func (nopTimer) Count() uint64         { return 0 }
func (nopTimer) Mean() time.Duration   { return 0 }
func (nopTimer) Max() time.Duration    { return 0 }
