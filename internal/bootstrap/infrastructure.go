package bootstrap

import (
	"context"
	"fmt"

	"shate-rag-be/internal/config"
	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/pkg/embedding"
	"shate-rag-be/pkg/llm"
	"shate-rag-be/pkg/llm/factory"
	"shate-rag-be/pkg/mongostore"
	"shate-rag-be/pkg/rerank"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Infrastructure holds the external clients shared by the HTTP server and the CLI.
// Store, Schema, Redis and DB are nil when the backing service is not configured or unreachable.
type Infrastructure struct {
	Logger   logger.ILogger
	LLM      llm.CompletionService
	Embedder embedding.EmbeddingProvider
	Scorer   rerank.Scorer
	Store    *mongostore.Store
	Schema   *mongostore.CachedStore
	Redis    *redis.Client
	DB       *gorm.DB
}

func NewInfrastructure(ctx context.Context, cfg *config.Config, db *gorm.DB, log logger.ILogger) (*Infrastructure, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	infra := &Infrastructure{Logger: log, DB: db}

	completion, err := factory.NewCompletionService(cfg.LLM.Provider, cfg.LLM.FastModel, cfg.LLM.BaseURL, cfg.LLM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("init completion service: %w", err)
	}
	infra.LLM = completion
	log.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{
		"provider": cfg.LLM.Provider,
		"base_url": cfg.LLM.BaseURL,
	})

	embedder, err := embedding.NewProvider(cfg.Embedding.Provider, cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model)
	if err != nil {
		return nil, fmt.Errorf("init embedding provider: %w", err)
	}
	infra.Embedder = embedder

	if cfg.Rerank.URL != "" {
		infra.Scorer = rerank.NewCrossEncoder(cfg.Rerank.URL, cfg.Rerank.APIKey, cfg.Rerank.Model)
	} else {
		log.Warn("BOOTSTRAP", "No rerank endpoint configured, keeping fused order", nil)
	}

	store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.DBName, log)
	if err != nil {
		log.Warn("BOOTSTRAP", "MongoDB unavailable, structured retrieval disabled", map[string]interface{}{"error": err.Error()})
	} else {
		infra.Store = store
		infra.Schema = mongostore.NewCachedStore(store, cfg.Mongo.SchemaCacheTTL)
	}

	if cfg.App.RedisURL != "" {
		infra.Redis = connectRedis(ctx, cfg.App.RedisURL, log)
	}

	return infra, nil
}

func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis unavailable, caching and feed relay disabled", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func (i *Infrastructure) Close(ctx context.Context) {
	if i.Store != nil {
		_ = i.Store.Close(ctx)
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	_ = i.Logger.Sync()
}
