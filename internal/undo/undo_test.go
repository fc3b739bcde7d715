package undo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func TestOpen_ReplacesAndClosesPreviousOnce(t *testing.T) {
	c := New()
	var log []string

	c.Open(t0, Notification{
		Message: "first",
		Undo:    func() { log = append(log, "undo first") },
		OnClose: func() { log = append(log, "close first") },
	})
	c.Open(t0.Add(time.Second), Notification{
		Message: "second",
		Undo:    func() {},
		OnClose: func() { log = append(log, "close second") },
	})

	assert.Equal(t, []string{"close first"}, log)
	v, ok := c.Current(t0.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, "second", v.Message)

	// Expiring the second slot must not re-run the first close.
	assert.True(t, c.Tick(t0.Add(time.Hour)))
	assert.Equal(t, []string{"close first", "close second"}, log)
}

func TestTick_ExpiryWindows(t *testing.T) {
	tests := []struct {
		name    string
		undo    func()
		window  time.Duration
		options []Option
	}{
		{"with undo", func() {}, DefaultWindow, nil},
		{"without undo", nil, DefaultWindowNoUndo, nil},
		{"custom with undo", func() {}, 2 * time.Second, []Option{WithWindows(2*time.Second, 0)}},
		{"custom without undo", nil, time.Second, []Option{WithWindows(0, time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.options...)
			closed := 0
			c.Open(t0, Notification{Message: "m", Undo: tt.undo, OnClose: func() { closed++ }})

			assert.False(t, c.Tick(t0.Add(tt.window-time.Millisecond)))
			assert.True(t, c.Active())
			assert.True(t, c.Tick(t0.Add(tt.window)))
			assert.False(t, c.Active())
			assert.False(t, c.Tick(t0.Add(2*tt.window)))
			assert.Equal(t, 1, closed)
		})
	}
}

func TestInvoke_RunsInverseAndShowsUndone(t *testing.T) {
	c := New()
	undone, closed := 0, 0
	c.Open(t0, Notification{
		Message: "Note archived",
		Undo:    func() { undone++ },
		OnClose: func() { closed++ },
	})

	require.True(t, c.Invoke(t0.Add(time.Second)))
	assert.Equal(t, 1, undone)
	assert.Zero(t, closed, "an undone action is never confirmed")

	v, ok := c.Current(t0.Add(time.Second))
	require.True(t, ok)
	assert.Equal(t, UndoneMessage, v.Message)
	assert.False(t, v.HasUndo)
	assert.Equal(t, DefaultWindowNoUndo, v.Remaining)

	assert.False(t, c.Invoke(t0.Add(2*time.Second)), "confirmation has no inverse")
	assert.Equal(t, 1, undone)
}

func TestInvoke_NoActionUndone(t *testing.T) {
	c := New()
	c.Open(t0, Notification{Message: "m", Undo: func() {}, NoActionUndone: true})

	require.True(t, c.Invoke(t0))
	assert.False(t, c.Active())
}

func TestInvoke_AfterExpiryIsImpossible(t *testing.T) {
	c := New()
	undone := 0
	c.Open(t0, Notification{Message: "m", Undo: func() { undone++ }})

	c.Tick(t0.Add(DefaultWindow))
	assert.False(t, c.Invoke(t0.Add(DefaultWindow)))
	assert.Zero(t, undone)
}

func TestOnClose_MayOpenNotification(t *testing.T) {
	c := New()
	c.Open(t0, Notification{
		Message: "m",
		OnClose: func() { c.Open(t0, Notification{Message: "follow-up"}) },
	})

	c.Close()

	v, ok := c.Current(t0)
	require.True(t, ok)
	assert.Equal(t, "follow-up", v.Message)
}

func TestUnloadBlocked(t *testing.T) {
	c := New()
	assert.False(t, c.UnloadBlocked())

	c.Open(t0, Notification{Message: "Image removed", Undo: func() {}, WarnUnload: true})
	assert.True(t, c.UnloadBlocked())
	assert.True(t, c.CanUndo())

	c.Tick(t0.Add(DefaultWindow))
	assert.False(t, c.UnloadBlocked())
}
