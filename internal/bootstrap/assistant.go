package bootstrap

import (
	"context"
	"fmt"

	"shate-rag-be/internal/config"
	"shate-rag-be/internal/repository/implementation"
	"shate-rag-be/pkg/corpus"
	"shate-rag-be/pkg/graph"
	"shate-rag-be/pkg/mongostore"
	"shate-rag-be/pkg/retriever"
	"shate-rag-be/pkg/structured"
	"shate-rag-be/pkg/vectorstore"
	"shate-rag-be/pkg/websearch"
)

// BuildAssistant wires the retrievers and the question answering graph. A missing corpus is
// fatal; a missing structured store or web search key only disables that branch.
func BuildAssistant(ctx context.Context, cfg *config.Config, infra *Infrastructure) (*graph.Assistant, error) {
	log := infra.Logger
	retrievers := map[graph.Source]retriever.Retriever{
		graph.SourceGreeting: retriever.NewGreetingRetriever(),
	}

	hybrid, err := buildHybrid(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}
	retrievers[graph.SourceSemantic] = hybrid

	var searcher websearch.Searcher = websearch.NewTavilyClient(cfg.WebSearch.APIKey, cfg.WebSearch.MaxResults)
	if infra.Redis != nil {
		searcher = websearch.NewCachedSearcher(searcher, websearch.NewRedisCache(infra.Redis, cfg.WebSearch.CacheTTL, log))
	}
	retrievers[graph.SourceWeb] = retriever.NewWebRetriever(searcher, infra.Scorer, cfg.Retrieval.RerankTopN)

	if infra.Schema != nil {
		flow, err := structured.NewFlow(structured.FlowConfig{
			LLM:              infra.LLM,
			Store:            infra.Schema,
			Allowlist:        mongostore.NewAllowlist(cfg.Mongo.AllowedCollections),
			QueryModel:       cfg.LLM.QueryModel,
			FormatModel:      cfg.LLM.FastModel,
			MaxQueryAttempts: cfg.Graph.MaxQueryAttempts,
			Logger:           log,
		})
		if err != nil {
			return nil, fmt.Errorf("init structured flow: %w", err)
		}
		retrievers[graph.SourceStructured] = retriever.NewStructuredRetriever(flow)
	}

	deps := graph.AssistantDeps{
		Classifier:  graph.NewClassifier(infra.LLM, cfg.LLM.FastModel, log),
		Router:      graph.NewRouter(retrievers),
		Dispatcher:  graph.NewDispatcher(cfg.Graph.BranchConcurrency, log),
		Synthesizer: graph.NewSynthesizer(infra.LLM, cfg.LLM.BestModel, log),
		Logger:      log,
	}
	if cfg.Graph.QueryTranslation {
		deps.Translator = graph.NewTranslator(infra.LLM, cfg.LLM.FastModel, log)
	}
	return graph.NewAssistant(deps)
}

func buildHybrid(ctx context.Context, cfg *config.Config, infra *Infrastructure) (*retriever.HybridRetriever, error) {
	log := infra.Logger

	records, err := corpus.Load(cfg.Retrieval.CorpusPath, nil)
	if err != nil {
		return nil, err
	}
	embedded, err := corpus.EnsureEmbeddings(ctx, records, infra.Embedder)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if embedded > 0 {
		if err := corpus.Save(cfg.Retrieval.CorpusPath, records); err != nil {
			log.Warn("BOOTSTRAP", "Failed to write embedded corpus back", map[string]interface{}{"error": err.Error()})
		}
	}

	vectors := make([][]float32, len(records))
	for i, r := range records {
		vectors[i] = r.Embedding
	}

	var index vectorstore.Index
	if cfg.Retrieval.VectorBackend == "pgvector" && infra.DB != nil {
		index, err = vectorstore.NewPgIndex(ctx, implementation.NewCorpusEmbeddingRepository(infra.DB), vectors)
	} else {
		index, err = vectorstore.NewMemoryIndex(vectors)
	}
	if err != nil {
		return nil, fmt.Errorf("init vector index: %w", err)
	}

	log.Info("BOOTSTRAP", "Corpus loaded", map[string]interface{}{
		"records":  len(records),
		"embedded": embedded,
		"backend":  cfg.Retrieval.VectorBackend,
	})

	return retriever.NewHybridRetriever(records, index, infra.Embedder, infra.Scorer, retriever.HybridOptions{
		LexicalK:      cfg.Retrieval.LexicalK,
		VectorK:       cfg.Retrieval.VectorK,
		LexicalWeight: cfg.Retrieval.LexicalWeight,
		VectorWeight:  cfg.Retrieval.VectorWeight,
		TopN:          cfg.Retrieval.RerankTopN,
	}, log)
}
