package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_DeliversToTopicOnly(t *testing.T) {
	d := New()
	var got []Event
	d.Subscribe(NoteMutated, func(e Event) { got = append(got, e) })
	d.Subscribe(OrderChanged, func(e Event) { t.Errorf("unexpected delivery: %+v", e) })

	d.Publish(Event{Type: NoteMutated, Action: "pin", NoteIDs: []string{"a"}})

	require.Len(t, got, 1)
	assert.Equal(t, "pin", got[0].Action)
	assert.Equal(t, []string{"a"}, got[0].NoteIDs)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	d := New()
	calls := 0
	unsub := d.Subscribe(LoadingStart, func(Event) { calls++ })

	d.Publish(Event{Type: LoadingStart})
	unsub()
	d.Publish(Event{Type: LoadingStart})

	assert.Equal(t, 1, calls)
}

func TestPublish_RecoversHandlerPanic(t *testing.T) {
	d := New()
	second := false
	d.Subscribe(PersistFailed, func(Event) { panic("boom") })
	d.Subscribe(PersistFailed, func(Event) { second = true })

	assert.NotPanics(t, func() { d.Publish(Event{Type: PersistFailed}) })
	assert.True(t, second, "later handlers still run after a panic")
}

func TestClose_IgnoresLaterPublishes(t *testing.T) {
	d := New()
	calls := 0
	d.Subscribe(LoadingEnd, func(Event) { calls++ })

	d.Close()
	d.Publish(Event{Type: LoadingEnd})

	assert.Zero(t, calls)
}
