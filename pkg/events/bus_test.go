package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch <-chan Event, n int) []Event {
	out := make([]Event, 0, n)
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			return out
		}
	}
	return out
}

func TestPublishAssignsSequenceAndTimestamp(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(false)
	defer unsub()

	bus.Publish(TypeToolCalled, map[string]any{"name": "set_answer"})
	bus.Publish(TypeProgressUpdated, map[string]any{"filled": 1})

	got := collect(ch, 2)
	require.Len(t, got, 2)
	assert.Equal(t, TypeToolCalled, got[0].Type)
	assert.Equal(t, uint64(1), got[0].Sequence)
	assert.Equal(t, uint64(2), got[1].Sequence)
	assert.False(t, got[0].Timestamp.IsZero())
	assert.Equal(t, "set_answer", got[0].Data["name"])
}

func TestSubscribersSeeIdenticalOrder(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	chA, unsubA := bus.Subscribe(false)
	defer unsubA()
	chB, unsubB := bus.Subscribe(false)
	defer unsubB()

	for i := 0; i < 10; i++ {
		bus.Publish(TypeProgressUpdated, map[string]any{"filled": i})
	}

	gotA := collect(chA, 10)
	gotB := collect(chB, 10)
	require.Len(t, gotA, 10)
	require.Len(t, gotB, 10)
	for i := range gotA {
		assert.Equal(t, gotA[i].Sequence, gotB[i].Sequence)
		assert.Equal(t, gotA[i].Data, gotB[i].Data)
	}
}

func TestSubscribeWithReplay(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	bus.Publish(TypeSolvingStarted, map[string]any{"puzzle": "mini"})
	bus.Publish(TypeGridUpdated, nil)

	ch, unsub := bus.Subscribe(true)
	defer unsub()

	bus.Publish(TypeProgressUpdated, nil)

	got := collect(ch, 3)
	require.Len(t, got, 3)
	assert.Equal(t, TypeSolvingStarted, got[0].Type)
	assert.Equal(t, TypeGridUpdated, got[1].Type)
	assert.Equal(t, TypeProgressUpdated, got[2].Type)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsub := bus.Subscribe(false)
	unsub()

	bus.Publish(TypeProgressUpdated, nil)

	_, ok := <-ch
	assert.False(t, ok, "channel closes after unsubscribe")
}

func TestCloseClosesSubscribers(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.Subscribe(false)
	bus.Publish(TypeSolvingCompleted, nil)
	bus.Close()

	got := collect(ch, 2)
	require.Len(t, got, 1)
	assert.Equal(t, TypeSolvingCompleted, got[0].Type)
}

func TestSubscribeAfterCloseReplaysHistory(t *testing.T) {
	bus := NewBus()
	bus.Publish(TypeSolvingStarted, nil)
	bus.Publish(TypeSolvingCompleted, nil)
	bus.Close()

	ch, unsub := bus.Subscribe(true)
	defer unsub()

	got := collect(ch, 3)
	require.Len(t, got, 2, "history replayed, then channel closed")
	assert.Equal(t, TypeSolvingStarted, got[0].Type)
	assert.Equal(t, TypeSolvingCompleted, got[1].Type)
}

func TestHistory(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	bus.Publish(TypeSolvingStarted, nil)
	bus.Publish(TypeError, map[string]any{"message": "boom"})

	history := bus.History()
	require.Len(t, history, 2)
	assert.Equal(t, TypeError, history[1].Type)
}
