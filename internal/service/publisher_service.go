package service

import (
	"context"
	"encoding/json"

	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/pkg/events"
	pktNats "pivot-graph-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// GraphEventsTopic is the in-process topic lifecycle events travel on.
const GraphEventsTopic = "graph_events"

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

// NatsEventPublisher forwards events to the NATS bus for other services.
type NatsEventPublisher struct {
	publisher *pktNats.Publisher
}

func NewNatsEventPublisher(publisher *pktNats.Publisher) IPublisherService {
	return &NatsEventPublisher{publisher: publisher}
}

func (p *NatsEventPublisher) Publish(ctx context.Context, event events.Event) error {
	return p.publisher.Publish(ctx, event)
}

// WatermillEventPublisher puts events on an in-process watermill topic.
type WatermillEventPublisher struct {
	publisher message.Publisher
	topic     string
}

func NewWatermillEventPublisher(publisher message.Publisher, topic string) IPublisherService {
	return &WatermillEventPublisher{publisher: publisher, topic: topic}
}

type graphEventMessage struct {
	Type       string                 `json:"type"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt int64                  `json:"occurred_at"`
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(graphEventMessage{
		Type:       event.EventType(),
		Payload:    event.Payload(),
		OccurredAt: event.Timestamp().UnixMilli(),
	})
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	return p.publisher.Publish(p.topic, msg)
}

// fanoutPublisher hands every event to each publisher. Failures are logged
// and do not stop the others; events are best effort.
type fanoutPublisher struct {
	publishers []IPublisherService
	logger     logger.ILogger
}

func NewFanoutPublisher(log logger.ILogger, publishers ...IPublisherService) IPublisherService {
	return &fanoutPublisher{publishers: publishers, logger: log}
}

func (p *fanoutPublisher) Publish(ctx context.Context, event events.Event) error {
	for _, pub := range p.publishers {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, event); err != nil {
			p.logger.Warn("PUBLISHER", "Failed to publish event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}
	return nil
}
