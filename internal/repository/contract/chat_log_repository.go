package contract

import (
	"context"

	"shate-rag-be/internal/entity"
	"shate-rag-be/internal/repository/specification"
)

type ChatLogRepository interface {
	Create(ctx context.Context, log *entity.ChatLog) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
