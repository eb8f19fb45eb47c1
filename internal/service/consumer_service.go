package service

import (
	"context"
	"encoding/json"

	"shate-rag-be/internal/dto"
	"shate-rag-be/internal/entity"
	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/repository/unitofwork"
	"shate-rag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const EventChatAnswered = "CHAT_ANSWERED"

// EventPublisher mirrors events onto the cross service bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// FeedBroadcaster pushes answered chats to live operator feeds.
type FeedBroadcaster interface {
	BroadcastFeed(payload []byte)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	eventPub   EventPublisher
	feed       FeedBroadcaster
	logger     logger.ILogger
}

// NewConsumerService persists chat logs when uowFactory is set. eventPub and feed are optional.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPub EventPublisher,
	feed FeedBroadcaster,
	log logger.ILogger,
) IConsumerService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		eventPub:   eventPub,
		feed:       feed,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ChatAnsweredMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal chat log message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // poison message, do not redeliver
		return
	}

	if cs.uowFactory != nil {
		err := unitofwork.Transact(ctx, cs.uowFactory, func(uow unitofwork.UnitOfWork) error {
			return uow.ChatLogRepository().Create(ctx, chatLogEntity(&payload))
		})
		if err != nil {
			cs.logger.Error("CONSUMER", "Failed to persist chat log", map[string]interface{}{
				"id":    payload.Id.String(),
				"error": err.Error(),
			})
			msg.Nack()
			return
		}
	}

	if cs.eventPub != nil {
		err := cs.eventPub.Publish(ctx, events.BaseEvent{
			Type: EventChatAnswered,
			Data: map[string]interface{}{
				"id":         payload.Id.String(),
				"status":     payload.Status,
				"decisions":  len(payload.Decisions),
				"documents":  len(payload.Documents),
				"latency_ms": payload.LatencyMs,
			},
			OccurredAt: payload.CreatedAt,
		})
		if err != nil {
			cs.logger.Warn("CONSUMER", "Failed to mirror chat event on NATS", map[string]interface{}{"error": err.Error()})
		}
	}

	if cs.feed != nil {
		cs.feed.BroadcastFeed(msg.Payload)
	}

	cs.logger.Debug("CONSUMER", "Chat log processed", map[string]interface{}{"id": payload.Id.String()})
	msg.Ack()
}

func chatLogEntity(m *dto.ChatAnsweredMessage) *entity.ChatLog {
	decisions := make([]entity.ChatLogDecision, len(m.Decisions))
	for i, d := range m.Decisions {
		decisions[i] = entity.ChatLogDecision{Source: d.Source, Query: d.Query}
	}
	return &entity.ChatLog{
		Id:         m.Id,
		Question:   m.Question,
		SubQueries: m.SubQueries,
		Decisions:  decisions,
		Documents:  m.Documents,
		Generation: m.Generation,
		Status:     m.Status,
		Error:      m.Error,
		LatencyMs:  m.LatencyMs,
		CreatedAt:  m.CreatedAt,
	}
}
