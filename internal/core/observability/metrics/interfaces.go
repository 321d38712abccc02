package metrics

import "time"

type Counter interface {
	Inc()
	Add(float64)
	Value() float64
}

type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
	Value() float64
}

// Timer accumulates durations.
type Timer interface {
	Observe(time.Duration)
	// Start returns a func that records the time elapsed since Start.
	Start() func()
	Count() uint64
	Mean() time.Duration
	Max() time.Duration
}

type Kind string

const (
	KindCounter Kind = "counter"
	KindGauge   Kind = "gauge"
	KindTimer   Kind = "timer"
)

// Family is one exported metric.
type Family struct {
	Name  string  `json:"name"`
	Kind  Kind    `json:"kind"`
	Value float64 `json:"value"`
	// Timer only, durations in seconds.
	Count uint64  `json:"count,omitempty"`
	Mean  float64 `json:"mean,omitempty"`
	Max   float64 `json:"max,omitempty"`
}
