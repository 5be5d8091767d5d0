package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjiri1684/teacheron/testutil"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(testutil.Logger())
	t.Cleanup(func() { bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := bus.Subscribe(ctx, TopicReviewCreated)
	require.NoError(t, err)

	want := ReviewCreated{ReviewID: uuid.New(), TutorID: uuid.New(), StudentID: uuid.New(), Rating: 4}
	bus.Publish(ctx, TopicReviewCreated, want)

	select {
	case msg := <-msgs:
		var got ReviewCreated
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		msg.Ack()
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Publish(context.Background(), TopicBidAccepted, BidAccepted{})
	r.Publish(context.Background(), TopicJobClosed, JobClosed{})
	assert.Equal(t, []string{TopicBidAccepted, TopicJobClosed}, r.Topics())
}
