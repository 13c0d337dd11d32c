package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_DeliversToSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	var got []Event

	require.NoError(t, bus.Subscribe(SubjectReviewCreated, func(ctx context.Context, evt Event) error {
		got = append(got, evt)
		return nil
	}))

	evt := NewEvent("", "review-1")
	evt.BusinessID = "biz-1"
	require.NoError(t, bus.Publish(context.Background(), SubjectReviewCreated, evt))
	require.NoError(t, bus.Publish(context.Background(), SubjectUserFlagged, NewEvent(SubjectUserFlagged, "user-1")))

	require.Len(t, got, 1)
	assert.Equal(t, SubjectReviewCreated, got[0].Type)
	assert.Equal(t, "biz-1", got[0].BusinessID)
	assert.Len(t, bus.Published(), 2)
}

func TestMemoryBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewMemoryBus()
	calls := 0

	_ = bus.Subscribe(SubjectDocumentVerified, func(ctx context.Context, evt Event) error {
		calls++
		return errors.New("boom")
	})
	_ = bus.Subscribe(SubjectDocumentVerified, func(ctx context.Context, evt Event) error {
		calls++
		return nil
	})

	assert.NoError(t, bus.Publish(context.Background(), SubjectDocumentVerified, NewEvent(SubjectDocumentVerified, "doc-1")))
	assert.Equal(t, 2, calls)
}

func TestNewEvent(t *testing.T) {
	evt := NewEvent(SubjectBusinessVerified, "biz-9")

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "biz-9", evt.EntityID)
	assert.False(t, evt.OccurredAt.IsZero())
}

func TestNewNATSBus_Unreachable(t *testing.T) {
	_, err := NewNATSBus("nats://127.0.0.1:1", "test")
	assert.Error(t, err)
}
