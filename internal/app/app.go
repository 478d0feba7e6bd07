package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"deepread/internal/config"
	"deepread/internal/core"
	"deepread/internal/core/chat"
	"deepread/internal/core/database"
	"deepread/internal/core/extract"
	"deepread/internal/core/index"
	"deepread/internal/core/ingestion_engine"
	"deepread/internal/core/llm"
	objectclient "deepread/internal/core/object-client"
	"deepread/internal/core/session"
)

type App struct {
	DBClient     *database.DatabaseClient
	ObjectClient core.ObjectClient
	Index        core.VectorIndex
	Sessions     *session.Store
	Server       *Server

	cancelSweeper context.CancelFunc
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{}

	if cfg.VectorBackend == "pgvector" {
		dbClient, err := database.NewDatabaseClient(appCtx, cfg)
		if err != nil {
			return nil, err
		}
		log.Println("Database initialized and ready.")
		a.DBClient = dbClient
		a.Index = index.NewPgvectorIndex(dbClient.DB())
	} else {
		a.Index = index.NewMemoryIndex()
		log.Println("Using in-memory vector index; collections will not survive restarts.")
	}

	objClient, err := newObjectClient(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.ObjectClient = objClient

	embedder, err := newEmbedder(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	llmProvider, err := newLLM(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("couldn't initialize the llm: %w", err)
	}

	extractor := extract.NewDispatcher(
		extract.NewPDFExtractor(),
		extract.NewDocconvExtractor(false),
	)

	pipeline := ingestion_engine.NewPipeline(extractor, embedder, a.Index)

	a.Sessions = session.NewStore(cfg.MaxTurns, cfg.SessionTimeout)
	if cfg.SessionSweepInterval > 0 {
		sweepCtx, cancelSweep := context.WithCancel(context.Background())
		a.cancelSweeper = cancelSweep
		go a.Sessions.RunSweeper(sweepCtx, cfg.SessionSweepInterval)
	}

	orchestrator := chat.NewOrchestrator(a.Sessions, embedder, a.Index, llmProvider, cfg.TopK, cfg.LLMTimeout)

	a.Server = NewServer(cfg, a.registry(), objClient, pipeline, a.Index, orchestrator)

	return a, nil
}

// registry returns the document registry, which is Postgres when available
// and an in-process map otherwise.
func (a *App) registry() core.DbClient {
	if a.DBClient != nil {
		return a.DBClient
	}
	return database.NewMemoryRegistry()
}

func newObjectClient(ctx context.Context, cfg *config.Config) (core.ObjectClient, error) {
	switch cfg.StorageBackend {
	case "s3":
		return objectclient.NewS3Client(ctx, cfg)
	case "local":
		return objectclient.NewLocalStore(cfg.PDFDir)
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

func newEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case "gemini":
		return llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	case "ollama":
		return llm.NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.EmbedModel), nil
	case "mock":
		return llm.NewMockEmbedder(cfg.EmbedDim), nil
	default:
		return nil, fmt.Errorf("unknown EMBED_PROVIDER %q", cfg.EmbedProvider)
	}
}

func newLLM(ctx context.Context, cfg *config.Config) (core.LLMProvider, error) {
	switch cfg.LLMProvider {
	case "gemini":
		return llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	case "ollama":
		return llm.NewOllamaLLM(cfg.OllamaBaseURL, cfg.GenModel), nil
	case "mock":
		return &llm.MockLLM{Reply: "This is a canned development answer."}, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func (a *App) Close() {
	if a.cancelSweeper != nil {
		a.cancelSweeper()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
