package bus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_, _ string, _ Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_, _ string, handlers int, err error, _ int64) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe(TypeSwingStarted, func(e Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent(TypeSwingStarted, "actor-1", 123)))
	require.NotNil(t, got)
	assert.Equal(t, "actor-1", got.Source())
	assert.Equal(t, 123, got.Data())
	assert.False(t, got.Timestamp().IsZero())
}

func TestSubscribeRejectsBadInput(t *testing.T) {
	b := New()
	_, err := b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	_, err = b.Subscribe("", func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyEventType)
	assert.ErrorIs(t, b.Publish(nil), ErrNilEvent)
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	e1 := errors.New("first")
	e2 := errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.Publish(NewEvent("x", "src", nil))
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestTopicsIsolation(t *testing.T) {
	b := New()
	count1, count2 := 0, 0
	_, _ = b.SubscribeTopic("actor-a", TypeInputAction, func(Event) error { count1++; return nil })
	_, _ = b.SubscribeTopic("actor-b", TypeInputAction, func(Event) error { count2++; return nil })

	require.NoError(t, b.PublishToTopic("actor-a", NewEvent(TypeInputAction, "client", nil)))
	assert.Equal(t, 1, count1)
	assert.Equal(t, 0, count2)

	// default topic does not leak into named topics
	require.NoError(t, b.Publish(NewEvent(TypeInputAction, "client", nil)))
	assert.Equal(t, 1, count1)
}

func TestCancelAndDropTopic(t *testing.T) {
	b := New()
	var calls atomic.Int32
	sub, err := b.SubscribeTopic("actor-a", "ev", func(Event) error { calls.Add(1); return nil })
	require.NoError(t, err)
	assert.Equal(t, "actor-a", sub.Topic())

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel(), "second cancel is safe")
	assert.False(t, sub.IsActive())
	_ = b.PublishToTopic("actor-a", NewEvent("ev", "s", nil))
	assert.EqualValues(t, 0, calls.Load())

	sub2, _ := b.SubscribeTopic("actor-a", "ev", func(Event) error { calls.Add(1); return nil })
	b.DropTopic("actor-a")
	assert.False(t, sub2.IsActive())
	_ = b.PublishToTopic("actor-a", NewEvent("ev", "s", nil))
	assert.EqualValues(t, 0, calls.Load())
	for _, ti := range b.GetTopics() {
		assert.NotEqual(t, "actor-a", ti.Name)
	}
}

func TestCancelPrunesEmptyTopics(t *testing.T) {
	b := New()
	var subs []Subscription
	for _, topic := range []string{"actor-a", "actor-b"} {
		for _, et := range []string{TypeInputAction, TypeInputAxis} {
			sub, err := b.SubscribeTopic(topic, et, func(Event) error { return nil })
			require.NoError(t, err)
			subs = append(subs, sub)
		}
	}
	assert.Equal(t, []TopicInfo{
		{Name: "actor-a", EventTypes: 2, Subs: 2},
		{Name: "actor-b", EventTypes: 2, Subs: 2},
	}, b.GetTopics())

	require.NoError(t, subs[0].Cancel())
	assert.Equal(t, []TopicInfo{
		{Name: "actor-a", EventTypes: 1, Subs: 1},
		{Name: "actor-b", EventTypes: 2, Subs: 2},
	}, b.GetTopics())

	for _, sub := range subs {
		require.NoError(t, b.Unsubscribe(sub))
	}
	assert.Empty(t, b.GetTopics())
	m := b.GetMetrics()
	assert.Zero(t, m.Topics)
	assert.Zero(t, m.SubscribersActive)
}

func TestCancelAfterDropTopicKeepsNewSubscribers(t *testing.T) {
	b := New()
	stale, err := b.SubscribeTopic("actor-a", "ev", func(Event) error { return nil })
	require.NoError(t, err)
	b.DropTopic("actor-a")

	var calls atomic.Int32
	_, err = b.SubscribeTopic("actor-a", "ev", func(Event) error { calls.Add(1); return nil })
	require.NoError(t, err)
	require.NoError(t, stale.Cancel())

	require.NoError(t, b.PublishToTopic("actor-a", NewEvent("ev", "s", nil)))
	assert.EqualValues(t, 1, calls.Load())
	assert.Len(t, b.GetTopics(), 1)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	assert.Zero(t, b.GetMetrics().Published, "no metrics without observers")

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	assert.EqualValues(t, 1, m.Published)
	assert.EqualValues(t, 1, m.DeliveredHandlers)
	assert.EqualValues(t, 1, m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	assert.Equal(t, 1, obs.publishCount)
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	b := New()
	var delivered atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, _ := b.Subscribe("tick", func(Event) error { delivered.Add(1); return nil })
			_ = sub.Cancel()
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Publish(NewEvent("tick", "s", j))
			}
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, delivered.Load(), int64(0))
}
