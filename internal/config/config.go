package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Retrieval RetrievalConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Rerank    RerankConfig
	WebSearch WebSearchConfig
	Graph     GraphConfig
}

type AppConfig struct {
	Name               string
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	RequestTimeout     time.Duration
}

// DatabaseConfig is the Postgres connection used for the chat log and the optional pgvector index.
type DatabaseConfig struct {
	Connection string
}

type MongoConfig struct {
	URI                string
	DBName             string
	AllowedCollections []string
	SchemaCacheTTL     time.Duration
}

type RetrievalConfig struct {
	CorpusPath    string
	RerankTopN    int
	LexicalK      int
	VectorK       int
	LexicalWeight float64
	VectorWeight  float64
	VectorBackend string // "memory" or "pgvector"
}

type LLMConfig struct {
	Provider    string // "openai" (any OpenAI-compatible endpoint such as the LiteLLM proxy) or "ollama"
	BaseURL     string
	APIKey      string
	FastModel   string
	BestModel   string
	QueryModel  string
	ProxyConfig string
}

type EmbeddingConfig struct {
	Provider string // "openai" or "ollama"
	BaseURL  string
	APIKey   string
	Model    string
}

type RerankConfig struct {
	URL    string
	APIKey string
	Model  string
}

type WebSearchConfig struct {
	APIKey     string
	MaxResults int
	CacheTTL   time.Duration
}

type GraphConfig struct {
	QueryTranslation  bool
	MaxQueryAttempts  int
	BranchConcurrency int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "Shate Shop RAG System"),
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 90*time.Second),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Mongo: MongoConfig{
			URI:                getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName:             getEnv("MONGO_DB_NAME", "test"),
			AllowedCollections: getEnvAsList("ALLOWED_COLLECTIONS", []string{"productvariants", "products", "promotions"}),
			SchemaCacheTTL:     getEnvAsDuration("SCHEMA_CACHE_TTL", 10*time.Minute),
		},
		Retrieval: RetrievalConfig{
			CorpusPath:    getEnv("DOC_DIRECTORY", "data/contextual_docs.json"),
			RerankTopN:    getEnvAsInt("RERANK_TOP_N", 3),
			LexicalK:      getEnvAsInt("LEXICAL_K", 5),
			VectorK:       getEnvAsInt("VECTOR_K", 5),
			LexicalWeight: getEnvAsFloat("LEXICAL_WEIGHT", 0.5),
			VectorWeight:  getEnvAsFloat("VECTOR_WEIGHT", 0.5),
			VectorBackend: getEnv("VECTOR_BACKEND", "memory"),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			BaseURL:     getEnv("LLM_BASE_URL", "http://localhost:4000/v1"),
			APIKey:      getEnv("LLM_API_KEY", "sk-local"),
			FastModel:   getEnv("LLM_FAST_MODEL", "fast-model"),
			BestModel:   getEnv("LLM_BEST_MODEL", "best-model"),
			QueryModel:  getEnv("LLM_QUERY_MODEL", "mql-model"),
			ProxyConfig: getEnv("LLM_PROXY_CONFIG", "llm-proxy/config.yaml"),
		},
		Embedding: EmbeddingConfig{
			Provider: getEnv("EMBEDDING_PROVIDER", "openai"),
			BaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:4000/v1"),
			APIKey:   getEnv("EMBEDDING_API_KEY", getEnv("LLM_API_KEY", "sk-local")),
			Model:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Rerank: RerankConfig{
			URL:    getEnv("RERANK_URL", "http://localhost:4000/v1/rerank"),
			APIKey: getEnv("RERANK_API_KEY", getEnv("LLM_API_KEY", "sk-local")),
			Model:  getEnv("RERANK_MODEL", "BAAI/bge-reranker-v2-m3"),
		},
		WebSearch: WebSearchConfig{
			APIKey:     getEnv("TAVILY_API_KEY", ""),
			MaxResults: getEnvAsInt("TAVILY_MAX_RESULTS", 10),
			CacheTTL:   getEnvAsDuration("WEB_SEARCH_CACHE_TTL", 15*time.Minute),
		},
		Graph: GraphConfig{
			QueryTranslation:  getEnvAsBool("QUERY_TRANSLATION_ENABLED", false),
			MaxQueryAttempts:  getEnvAsInt("MAX_QUERY_ATTEMPTS", 3),
			BranchConcurrency: getEnvAsInt("BRANCH_CONCURRENCY", 8),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value. An empty value keeps the fallback.
func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
