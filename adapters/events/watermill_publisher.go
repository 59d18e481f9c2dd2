package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/teller/core"
	"github.com/layer-3/teller/ports"
)

// TransitionTopic is where session lifecycle changes are published
const TransitionTopic = "teller.transition"

// TransitionEvent represents one state change of a session
type TransitionEvent struct {
	SessionID string    `json:"session_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	At        time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     TransitionTopic,
	}
}

// PublishTransition publishes a transition event
func (p *WatermillPublisher) PublishTransition(ctx context.Context, sessionID string, from, to core.State, at time.Time) error {
	event := TransitionEvent{
		SessionID: sessionID,
		From:      from.String(),
		To:        to.String(),
		At:        at.UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session_id", sessionID)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
