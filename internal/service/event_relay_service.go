package service

import (
	"context"
	"encoding/json"
	"time"

	"autoideas-be/internal/pkg/logger"
	"autoideas-be/internal/websocket"
	"autoideas-be/pkg/events"
	pktNats "autoideas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IEventRelayService drains the in-process event bus and fans events out to
// the websocket hub and the external NATS bus. It runs on its own goroutine
// so a slow consumer never backs up into the workers.
type IEventRelayService interface {
	Start(ctx context.Context) error
}

type eventRelayService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewEventRelayService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IEventRelayService {
	return &eventRelayService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		natsPub:   natsPub,
		logger:    log,
	}
}

func (s *eventRelayService) Start(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.relayMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *eventRelayService) relayMessage(ctx context.Context, msg *message.Message) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("EventRelay", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed, retrying will not help
		return
	}

	event := rebuildEvent(payload)

	if s.hub != nil {
		s.hub.Publish(event)
	}

	if s.natsPub != nil {
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := s.natsPub.Publish(pubCtx, event); err != nil {
			// External bus is auxiliary; dashboards got the event already.
			s.logger.Warn("EventRelay", "Failed to publish to NATS", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
		cancel()
	}

	msg.Ack()
}

// rebuildEvent reconstructs an events.Event from its wire payload. The
// constructors always embed type, workshop_id and timestamp.
func rebuildEvent(payload map[string]interface{}) events.Event {
	eventType, _ := payload["type"].(string)

	var workshopID uuid.UUID
	if raw, ok := payload["workshop_id"].(string); ok {
		workshopID, _ = uuid.Parse(raw)
	}

	occurredAt := time.Now().UTC()
	if raw, ok := payload["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			occurredAt = ts
		}
	}

	return events.BaseEvent{
		Type:       eventType,
		Workshop:   workshopID,
		Data:       payload,
		OccurredAt: occurredAt,
	}
}
