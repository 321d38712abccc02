// Package input maps named actions and axes to character handlers.
//
// Producers (network connections, the simulator) push events from any
// goroutine; the owning character drains them once per tick with Process,
// so handlers always run on the simulation goroutine.
package input

import (
	"fmt"
	"math"
	"sync"

	"github.com/zeusync/webswing/internal/core/events/bus"
	"github.com/zeusync/webswing/internal/core/systems/physics"
)

type KeyEvent uint8

const (
	Pressed KeyEvent = iota
	Released
)

func (k KeyEvent) String() string {
	if k == Pressed {
		return "pressed"
	}
	return "released"
}

type (
	ActionHandler func()
	// AxisHandler receives the axis value and the tick length in seconds.
	AxisHandler func(value, dt float64)
)

// ActionMessage is the bus payload for TypeInputAction.
type ActionMessage struct {
	Name    string `json:"name"`
	Pressed bool   `json:"pressed"`
}

// AxisMessage is the bus payload for TypeInputAxis.
type AxisMessage struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type actionEvent struct {
	name string
	key  KeyEvent
}

type axisState struct {
	delta   bool
	value   float64
	handler AxisHandler
}

type Component struct {
	mu      sync.Mutex
	actions map[string]map[KeyEvent]ActionHandler
	axes    map[string]*axisState
	order   []string
	queue   []actionEvent
}

func NewComponent(b Bindings) *Component {
	c := &Component{
		actions: make(map[string]map[KeyEvent]ActionHandler, len(b.Actions)),
		axes:    make(map[string]*axisState, len(b.Axes)),
	}
	for _, name := range b.Actions {
		c.actions[name] = make(map[KeyEvent]ActionHandler, 2)
	}
	for _, a := range b.Axes {
		if _, ok := c.axes[a.Name]; !ok {
			c.order = append(c.order, a.Name)
		}
		c.axes[a.Name] = &axisState{delta: a.Delta}
	}
	return c
}

func (c *Component) BindAction(name string, key KeyEvent, handler ActionHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	handlers, ok := c.actions[name]
	if !ok {
		return fmt.Errorf("%w: action %q", ErrUnknownBinding, name)
	}
	handlers[key] = handler
	return nil
}

func (c *Component) BindAxis(name string, handler AxisHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	axis, ok := c.axes[name]
	if !ok {
		return fmt.Errorf("%w: axis %q", ErrUnknownBinding, name)
	}
	axis.handler = handler
	return nil
}

// PushAction queues a press or release. Safe for concurrent use.
func (c *Component) PushAction(name string, key KeyEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.actions[name]; !ok {
		return fmt.Errorf("%w: action %q", ErrUnknownBinding, name)
	}
	c.queue = append(c.queue, actionEvent{name: name, key: key})
	return nil
}

// SetAxis records an axis sample. Absolute axes are clamped to [-1, 1];
// delta axes add up until the next Process. Safe for concurrent use.
func (c *Component) SetAxis(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidValue, name, value)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	axis, ok := c.axes[name]
	if !ok {
		return fmt.Errorf("%w: axis %q", ErrUnknownBinding, name)
	}
	if axis.delta {
		axis.value += value
	} else {
		axis.value = physics.Clamp(value, -1, 1)
	}
	return nil
}

// Axis returns the current value of an axis, or 0 for unknown names.
func (c *Component) Axis(name string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if axis, ok := c.axes[name]; ok {
		return axis.value
	}
	return 0
}

// Pending reports how many action events wait for the next Process.
func (c *Component) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Process runs queued action handlers in arrival order, then every bound axis
// handler in declaration order. Delta axes are reset afterwards.
func (c *Component) Process(dt float64) {
	type axisCall struct {
		handler AxisHandler
		value   float64
	}

	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	actions := make([]ActionHandler, 0, len(queue))
	for _, ev := range queue {
		if h := c.actions[ev.name][ev.key]; h != nil {
			actions = append(actions, h)
		}
	}
	calls := make([]axisCall, 0, len(c.order))
	for _, name := range c.order {
		axis := c.axes[name]
		if axis.handler != nil {
			calls = append(calls, axisCall{axis.handler, axis.value})
		}
		if axis.delta {
			axis.value = 0
		}
	}
	c.mu.Unlock()

	for _, h := range actions {
		h()
	}
	for _, call := range calls {
		call.handler(call.value, dt)
	}
}

// Subscribe routes input events published on topic into the component.
// Cancel the returned subscriptions to detach.
func (c *Component) Subscribe(b bus.EventBus, topic string) ([]bus.Subscription, error) {
	actionSub, err := b.SubscribeTopic(topic, bus.TypeInputAction, c.handleAction)
	if err != nil {
		return nil, err
	}
	axisSub, err := b.SubscribeTopic(topic, bus.TypeInputAxis, c.handleAxis)
	if err != nil {
		_ = actionSub.Cancel()
		return nil, err
	}
	return []bus.Subscription{actionSub, axisSub}, nil
}

func (c *Component) handleAction(ev bus.Event) error {
	msg, ok := ev.Data().(ActionMessage)
	if !ok {
		return fmt.Errorf("%w: %T", ErrBadPayload, ev.Data())
	}
	key := Released
	if msg.Pressed {
		key = Pressed
	}
	return c.PushAction(msg.Name, key)
}

func (c *Component) handleAxis(ev bus.Event) error {
	msg, ok := ev.Data().(AxisMessage)
	if !ok {
		return fmt.Errorf("%w: %T", ErrBadPayload, ev.Data())
	}
	return c.SetAxis(msg.Name, msg.Value)
}
