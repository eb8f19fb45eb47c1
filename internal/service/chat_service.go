package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shate-rag-be/internal/dto"
	"shate-rag-be/internal/entity"
	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/pkg/metrics"
	"shate-rag-be/pkg/graph"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Answerer runs the question answering graph.
type Answerer interface {
	Answer(ctx context.Context, question string) (*graph.State, error)
}

type IChatService interface {
	Ask(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	assistant Answerer
	publisher IPublisherService
	timeout   time.Duration
	logger    logger.ILogger
}

func NewChatService(assistant Answerer, publisher IPublisherService, timeout time.Duration, log logger.ILogger) IChatService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &chatService{
		assistant: assistant,
		publisher: publisher,
		timeout:   timeout,
		logger:    log,
	}
}

func (s *chatService) Ask(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id := uuid.New()
	start := time.Now()
	state, err := s.assistant.Answer(ctx, req.Question)
	latency := time.Since(start)

	status := entity.ChatLogStatusAnswered
	if err != nil {
		status = entity.ChatLogStatusFailed
	}
	metrics.RequestDuration.WithLabelValues(status).Observe(latency.Seconds())
	s.publishAnswered(ctx, answeredMessage(id, req.Question, state, err, latency))

	if err != nil {
		s.logger.Error("CHAT", "Question answering failed", map[string]interface{}{
			"id":       id.String(),
			"question": req.Question,
			"error":    err.Error(),
		})
		return nil, err
	}

	s.logger.Info("CHAT", "Question answered", map[string]interface{}{
		"id":         id.String(),
		"decisions":  len(state.Decisions),
		"documents":  len(state.Documents),
		"latency_ms": latency.Milliseconds(),
	})
	return &dto.ChatResponse{
		Id:         id,
		Generation: state.Generation,
		Documents:  state.DocumentTexts(),
		Decisions:  decisionDTOs(state.Decisions),
		LatencyMs:  latency.Milliseconds(),
	}, nil
}

// publishAnswered never fails the request; the chat log is best effort.
func (s *chatService) publishAnswered(ctx context.Context, msg *dto.ChatAnsweredMessage) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("CHAT", "Failed to encode chat log message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), payload); err != nil {
		s.logger.Warn("CHAT", "Failed to publish chat log message", map[string]interface{}{"error": err.Error()})
	}
}

func answeredMessage(id uuid.UUID, question string, state *graph.State, err error, latency time.Duration) *dto.ChatAnsweredMessage {
	msg := &dto.ChatAnsweredMessage{
		Id:        id,
		Question:  question,
		Status:    entity.ChatLogStatusAnswered,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now(),
	}
	if state != nil {
		msg.SubQueries = state.SubQueries
		msg.Decisions = decisionDTOs(state.Decisions)
		msg.Documents = state.DocumentTexts()
		msg.Generation = state.Generation
	}
	if err != nil {
		msg.Status = entity.ChatLogStatusFailed
		msg.Error = err.Error()
	}
	return msg
}

func decisionDTOs(decisions []graph.RoutingDecision) []dto.DecisionDTO {
	out := make([]dto.DecisionDTO, len(decisions))
	for i, d := range decisions {
		out[i] = dto.DecisionDTO{Source: string(d.Source), Query: d.Query}
	}
	return out
}

// AsFiberError maps answering failures to HTTP errors with customer safe messages.
func AsFiberError(err error) *fiber.Error {
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr
	case errors.Is(err, graph.ErrEmptyQuestion):
		return fiber.NewError(fiber.StatusBadRequest, "question is required")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "answering took too long, please try again")
	case errors.Is(err, context.Canceled):
		return fiber.NewError(fiber.StatusRequestTimeout, "request cancelled")
	case errors.Is(err, graph.ErrSynthesis):
		return fiber.NewError(fiber.StatusBadGateway, "the answer model is unavailable, please try again")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to answer the question")
	}
}
