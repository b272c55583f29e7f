package server

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

func event(t types.EventType) types.Event {
	return types.Event{RunID: "run", Type: t}
}

func TestHub_Delivers(t *testing.T) {
	h := NewHub(nil)
	a, unsubA := h.Subscribe()
	b, unsubB := h.Subscribe()
	defer unsubA()
	defer unsubB()
	assert.Equal(t, 2, h.Subscribers())

	h.Publish(event(types.EventGameStarted))

	assert.Equal(t, types.EventGameStarted, (<-a).Type)
	assert.Equal(t, types.EventGameStarted, (<-b).Type)
}

func TestHub_ReplaysHistory(t *testing.T) {
	h := NewHub(nil)
	h.Publish(event(types.EventHelperStarted))
	h.Publish(event(types.EventGameStarted))

	ch, unsub := h.Subscribe()
	defer unsub()

	assert.Equal(t, types.EventHelperStarted, (<-ch).Type)
	assert.Equal(t, types.EventGameStarted, (<-ch).Type)
}

func TestHub_DropsForSlowSubscriber(t *testing.T) {
	var dropped atomic.Int32
	h := NewHub(func() { dropped.Add(1) })

	slow, unsubSlow := h.Subscribe()
	defer unsubSlow()

	capacity := cap(slow)
	for range capacity + 5 {
		h.Publish(event(types.EventStateChanged))
	}

	assert.Equal(t, int32(5), dropped.Load())
	assert.Len(t, slow, capacity)
}

func TestHub_ForwardClosesSubscribers(t *testing.T) {
	h := NewHub(nil)
	ch, unsub := h.Subscribe()

	src := make(chan types.Event, 2)
	src <- event(types.EventRunCompleted)
	close(src)
	h.Forward(src)

	e, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, types.EventRunCompleted, e.Type)
	_, ok = <-ch
	assert.False(t, ok)

	unsub()
	h.Close()
	assert.Zero(t, h.Subscribers())

	late, _ := h.Subscribe()
	e, ok = <-late
	require.True(t, ok, "history still replayed after close")
	assert.Equal(t, types.EventRunCompleted, e.Type)
	_, ok = <-late
	assert.False(t, ok)
}

func TestHub_UnsubscribeTwice(t *testing.T) {
	h := NewHub(nil)
	_, unsub := h.Subscribe()
	unsub()
	unsub()
	assert.Zero(t, h.Subscribers())
	h.Publish(event(types.EventGameClosed))
}
