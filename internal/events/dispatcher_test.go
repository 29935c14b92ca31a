package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []string
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.Email)
		return errors.New("first failed")
	})
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.Email)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserRegistered, Email: "a@example.com"})
	require.ErrorContains(t, err, "first failed")
	assert.Equal(t, []string{"first:a@example.com", "second:a@example.com"}, got)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginFailed}))
}

func TestInMemoryDispatcher_RecoversPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error { panic("listener bug") })
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventLoginFailed})
	require.ErrorContains(t, err, "panicked")
	assert.True(t, called)
}
