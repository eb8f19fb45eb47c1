package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"shate-rag-be/internal/dto"
	"shate-rag-be/internal/entity"
	"shate-rag-be/pkg/graph"
	"shate-rag-be/pkg/retriever"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func answeredState() *graph.State {
	s := graph.NewState("Mã giảm giá nào đang áp dụng?")
	s.Decisions = []graph.RoutingDecision{{Source: graph.SourceStructured, Query: s.Question}}
	s.Documents = []retriever.Document{{Content: "Mã SUMMER giảm 20%."}}
	s.Generation = "Hiện có mã SUMMER giảm 20% ạ."
	return s
}

func TestChatService_Ask(t *testing.T) {
	answerer := new(MockAnswerer)
	publisher := new(MockPublisher)

	answerer.On("Answer", mock.Anything, "Mã giảm giá nào đang áp dụng?").Return(answeredState(), nil)

	var published dto.ChatAnsweredMessage
	publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &published))
	}).Return(nil)

	svc := NewChatService(answerer, publisher, time.Minute, nil)
	res, err := svc.Ask(context.Background(), &dto.ChatRequest{Question: "Mã giảm giá nào đang áp dụng?"})
	require.NoError(t, err)

	assert.Equal(t, "Hiện có mã SUMMER giảm 20% ạ.", res.Generation)
	assert.Equal(t, []string{"Mã SUMMER giảm 20%."}, res.Documents)
	assert.Equal(t, []dto.DecisionDTO{{Source: "mongodb_retriever", Query: "Mã giảm giá nào đang áp dụng?"}}, res.Decisions)

	assert.Equal(t, res.Id, published.Id)
	assert.Equal(t, entity.ChatLogStatusAnswered, published.Status)
	assert.Equal(t, res.Generation, published.Generation)
	answerer.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestChatService_FailureIsPublishedAndReturned(t *testing.T) {
	answerer := new(MockAnswerer)
	publisher := new(MockPublisher)

	answerer.On("Answer", mock.Anything, "q").Return(nil, graph.ErrSynthesis)
	var published dto.ChatAnsweredMessage
	publisher.On("Publish", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &published))
	}).Return(errors.New("bus closed"))

	_, err := NewChatService(answerer, publisher, 0, nil).Ask(context.Background(), &dto.ChatRequest{Question: "q"})
	assert.ErrorIs(t, err, graph.ErrSynthesis)
	assert.Equal(t, entity.ChatLogStatusFailed, published.Status)
	assert.Contains(t, published.Error, "answer synthesis failed")
}

func TestChatService_TimeoutIsApplied(t *testing.T) {
	answerer := new(MockAnswerer)
	answerer.On("Answer", mock.Anything, "q").Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
	}).Return(answeredState(), nil)

	_, err := NewChatService(answerer, nil, time.Second, nil).Ask(context.Background(), &dto.ChatRequest{Question: "q"})
	require.NoError(t, err)
}

func TestAsFiberError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"empty question", graph.ErrEmptyQuestion, fiber.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, fiber.StatusGatewayTimeout},
		{"wrapped deadline", errors.Join(errors.New("dispatch"), context.DeadlineExceeded), fiber.StatusGatewayTimeout},
		{"cancelled", context.Canceled, fiber.StatusRequestTimeout},
		{"fiber error", fiber.NewError(fiber.StatusTeapot, "x"), fiber.StatusTeapot},
		{"synthesis failure", fmt.Errorf("synthesize: %w", graph.ErrSynthesis), fiber.StatusBadGateway},
		{"synthesis timeout", fmt.Errorf("%w: %w", graph.ErrSynthesis, context.DeadlineExceeded), fiber.StatusGatewayTimeout},
		{"anything else", errors.New("classify: boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, AsFiberError(tt.err).Code)
		})
	}
}
