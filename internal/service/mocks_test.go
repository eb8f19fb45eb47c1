package service

import (
	"context"

	"shate-rag-be/internal/entity"
	"shate-rag-be/internal/repository/contract"
	"shate-rag-be/internal/repository/specification"
	"shate-rag-be/internal/repository/unitofwork"
	"shate-rag-be/pkg/events"
	"shate-rag-be/pkg/graph"

	"github.com/stretchr/testify/mock"
)

type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Answer(ctx context.Context, question string) (*graph.State, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graph.State), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, payload []byte) error {
	return m.Called(ctx, payload).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

type MockChatLogRepository struct {
	mock.Mock
}

func (m *MockChatLogRepository) Create(ctx context.Context, log *entity.ChatLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockChatLogRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error) {
	args := m.Called(ctx, specs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ChatLog), args.Error(1)
}

func (m *MockChatLogRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error) {
	args := m.Called(ctx, specs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ChatLog), args.Error(1)
}

func (m *MockChatLogRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	args := m.Called(ctx, specs)
	return args.Get(0).(int64), args.Error(1)
}

// stubUnitOfWork hands out fixed repositories and ignores transactions.
type stubUnitOfWork struct {
	chatLogs contract.ChatLogRepository
}

func (u *stubUnitOfWork) Begin(context.Context) error { return nil }
func (u *stubUnitOfWork) Commit() error               { return nil }
func (u *stubUnitOfWork) Rollback() error             { return nil }

func (u *stubUnitOfWork) ChatLogRepository() contract.ChatLogRepository { return u.chatLogs }

func (u *stubUnitOfWork) CorpusEmbeddingRepository() contract.CorpusEmbeddingRepository { return nil }

type stubFactory struct {
	uow *stubUnitOfWork
}

func (f stubFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }
