package service

import (
	"context"
	"encoding/json"

	"autoideas-be/internal/pkg/logger"
	"autoideas-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService puts pipeline events onto the in-process bus. Publishing
// is best-effort: a failure is logged and never propagated, so workers are
// never slowed down or failed by the notification path.
type IPublisherService interface {
	Publish(ctx context.Context, event events.Event)
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
	logger    logger.ILogger
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
		logger:    log,
	}
}

func (s *publisherService) Publish(ctx context.Context, event events.Event) {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		s.logger.Error("Publisher", "Failed to serialize event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		s.logger.Warn("Publisher", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
