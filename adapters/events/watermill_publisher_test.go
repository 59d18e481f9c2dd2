package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/teller/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishTransition(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TransitionTopic)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pub := NewWatermillPublisher(pubSub)
	require.NoError(t, pub.PublishTransition(ctx, "sess-1", core.PinEntry, core.Authenticated, at))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, "sess-1", msg.Metadata.Get("session_id"))

		var event TransitionEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, TransitionEvent{SessionID: "sess-1", From: "PIN_ENTRY", To: "AUTHENTICATED", At: at}, event)
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error { return nil }

func TestPublishTransitionError(t *testing.T) {
	pub := NewWatermillPublisher(failingPublisher{})
	err := pub.PublishTransition(context.Background(), "sess-1", core.Idle, core.CardPresent, time.Now())
	assert.ErrorContains(t, err, "broker down")
}
