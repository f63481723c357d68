package service

import (
	"context"
	"encoding/json"

	"pivot-graph-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// SessionDelivery pushes a payload to the clients of one session. The
// websocket hub implements it.
type SessionDelivery interface {
	SendSession(sessionID string, payload interface{})
}

type IEventRelayService interface {
	Consume(ctx context.Context) error
}

// eventRelayService moves lifecycle events from the in-process topic to the
// websocket clients of the session they belong to.
type eventRelayService struct {
	subscriber message.Subscriber
	topic      string
	delivery   SessionDelivery
	logger     logger.ILogger
}

func NewEventRelayService(subscriber message.Subscriber, topic string, delivery SessionDelivery, log logger.ILogger) IEventRelayService {
	return &eventRelayService{
		subscriber: subscriber,
		topic:      topic,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *eventRelayService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *eventRelayService) processMessage(msg *message.Message) {
	var event graphEventMessage
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.logger.Error("EVENT_RELAY", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	sessionID, _ := event.Payload["session_id"].(string)
	if sessionID != "" && s.delivery != nil {
		s.delivery.SendSession(sessionID, map[string]interface{}{
			"type":    "event",
			"event":   event.Type,
			"payload": event.Payload,
		})
	}
	msg.Ack()
}
