package service

import (
	"context"
	"strings"
	"time"

	"shate-rag-be/internal/dto"
	"shate-rag-be/internal/entity"
	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/repository/specification"
	"shate-rag-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether the structured store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaProvider renders the field schema of the given collections.
type SchemaProvider interface {
	Schema(ctx context.Context, collections []string) (string, error)
}

type ISystemService interface {
	Health(ctx context.Context) *dto.HealthResponse
	Schema(ctx context.Context) (*dto.SchemaResponse, error)
	GetLogs(ctx context.Context, req *dto.GetSystemLogsRequest) ([]logger.LogEntry, error)
	GetChatLogs(ctx context.Context, req *dto.GetChatLogsRequest) (*dto.GetChatLogsResponse, error)
}

type systemService struct {
	appName     string
	store       Pinger
	schema      SchemaProvider
	collections []string
	uowFactory  unitofwork.RepositoryFactory
	logger      logger.ILogger
}

func NewSystemService(
	appName string,
	store Pinger,
	schema SchemaProvider,
	collections []string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) ISystemService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &systemService{
		appName:     appName,
		store:       store,
		schema:      schema,
		collections: collections,
		uowFactory:  uowFactory,
		logger:      log,
	}
}

func (s *systemService) Health(ctx context.Context) *dto.HealthResponse {
	res := &dto.HealthResponse{AppName: s.appName, Status: "active", Database: "disconnected"}
	if s.store == nil {
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("SYSTEM", "MongoDB ping failed", map[string]interface{}{"error": err.Error()})
		return res
	}
	res.Database = "connected"
	return res
}

func (s *systemService) Schema(ctx context.Context) (*dto.SchemaResponse, error) {
	if s.schema == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "structured store is not configured")
	}
	text, err := s.schema.Schema(ctx, s.collections)
	if err != nil {
		s.logger.Error("SYSTEM", "Schema introspection failed", map[string]interface{}{"error": err.Error()})
		return nil, fiber.NewError(fiber.StatusBadGateway, "failed to read the collection schema")
	}
	return &dto.SchemaResponse{Collections: s.collections, Schema: text}, nil
}

func (s *systemService) GetLogs(_ context.Context, req *dto.GetSystemLogsRequest) ([]logger.LogEntry, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 50
	}
	return s.logger.GetLogs(req.Level, limit, req.Offset)
}

func (s *systemService) GetChatLogs(ctx context.Context, req *dto.GetChatLogsRequest) (*dto.GetChatLogsResponse, error) {
	if s.uowFactory == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "chat log storage is not configured")
	}

	limit := req.Limit
	if limit == 0 {
		limit = 20
	}
	var filters []specification.Specification
	if req.Status != "" {
		filters = append(filters, specification.ByStatus{Status: req.Status})
	}
	if q := strings.TrimSpace(req.Query); q != "" {
		filters = append(filters, specification.QuestionContains{Text: q})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).ChatLogRepository()
	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	logs, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ChatLogResponse, len(logs))
	for i, l := range logs {
		items[i] = chatLogResponse(l)
	}
	return &dto.GetChatLogsResponse{Total: total, Items: items}, nil
}

func chatLogResponse(l *entity.ChatLog) *dto.ChatLogResponse {
	decisions := make([]dto.DecisionDTO, len(l.Decisions))
	for i, d := range l.Decisions {
		decisions[i] = dto.DecisionDTO{Source: d.Source, Query: d.Query}
	}
	return &dto.ChatLogResponse{
		Id:         l.Id,
		Question:   l.Question,
		Decisions:  decisions,
		Generation: l.Generation,
		Status:     l.Status,
		Error:      l.Error,
		LatencyMs:  l.LatencyMs,
		CreatedAt:  l.CreatedAt,
	}
}
