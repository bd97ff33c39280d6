package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryDispatcher(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string

	d.Subscribe(EventComplaintStatusChanged, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.ComplaintID)
		return errors.New("boom")
	})
	d.Subscribe(EventComplaintStatusChanged, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.ComplaintID)
		return nil
	})
	d.Subscribe(EventComplaintSubmitted, func(_ context.Context, e Event) error {
		calls = append(calls, "submitted")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventComplaintStatusChanged, ComplaintID: "c-1"})
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []string{"first:c-1", "second:c-1"}, calls)

	assert.NoError(t, d.Publish(context.Background(), Event{Type: "unknown"}))
}
