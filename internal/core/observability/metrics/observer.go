package metrics

import (
	"time"

	"github.com/zeusync/webswing/internal/core/events/bus"
)

// BusObserver counts event bus traffic into a Registry.
type BusObserver struct {
	published Counter
	delivered Counter
	errors    Counter
	latency   Timer
}

var _ bus.EventBusObserver = (*BusObserver)(nil)

func NewBusObserver(r *Registry) *BusObserver {
	return &BusObserver{
		published: r.Counter("bus.published"),
		delivered: r.Counter("bus.delivered_handlers"),
		errors:    r.Counter("bus.errors"),
		latency:   r.Timer("bus.delivery"),
	}
}

func (o *BusObserver) OnPublish(string, string, bus.Event) {
	o.published.Inc()
}

func (o *BusObserver) OnDelivered(_, _ string, handlers int, err error, durationMicros int64) {
	o.delivered.Add(float64(handlers))
	if err != nil {
		o.errors.Inc()
	}
	o.latency.Observe(time.Duration(durationMicros) * time.Microsecond)
}
