package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/mini-rag/internal/api"
	ragapi "github.com/futig/mini-rag/internal/api/rag"
	"github.com/futig/mini-rag/internal/config"
	"github.com/futig/mini-rag/internal/integration/embedding"
	"github.com/futig/mini-rag/internal/integration/llm"
	"github.com/futig/mini-rag/internal/integration/qdrant"
	"github.com/futig/mini-rag/internal/pkg/formatter"
	pkglogger "github.com/futig/mini-rag/internal/pkg/logger"
	"github.com/futig/mini-rag/internal/pkg/validator"
	"github.com/futig/mini-rag/internal/usecase/rag"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Core holds everything the server and the CLI share
type Core struct {
	Config  *config.Config
	Logger  *zap.Logger
	Usecase *rag.Usecase
	db      *pgxpool.Pool
}

// Close releases the database pool and flushes the logger
func (c *Core) Close() {
	if c.db != nil {
		c.db.Close()
	}
	_ = c.Logger.Sync()
}

// Build assembles the HTTP application from the -env flag and the process environment
func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	core, err := BuildCore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	logger := core.Logger

	// Setup API handlers
	fileValidator := validator.NewFileValidator(cfg.FileUploadCfg)
	ragHandler := ragapi.NewHandler(core.Usecase, cfg.FileUploadCfg, cfg.UploadDir, fileValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(ragHandler, logger)
	logger.Info("HTTP router configured")

	// Generation calls can take a while; keep the write deadline above the router timeout
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		core:   core,
		logger: logger,
	}, nil
}

// BuildCore wires connectors, the document registry and the RAG use case, then bootstraps the collection
func BuildCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	core := &Core{Config: cfg, Logger: logger}

	documents, db, err := setupRegistry(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	core.db = db

	// Initialize external service connectors (with mock support)
	var (
		embedder  embedding.Provider
		generator rag.Generator
		index     rag.VectorIndex
	)

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		embedder = embedding.NewMockConnector(cfg.EmbeddingCfg.Dimension, logger)
		generator = llm.NewMockConnector(logger)
		index = qdrant.NewMockConnector(cfg.QdrantCfg.Collection, logger)
	} else {
		logger.Info("Using real connectors for external services",
			zap.String("embedding_backend", cfg.EmbeddingCfg.Backend),
			zap.String("llm_backend", cfg.LLMCfg.Backend),
		)
		embedder = newEmbedder(cfg, logger)
		generator = newGenerator(cfg, logger)
		index = qdrant.NewConnector(cfg.QdrantCfg, logger)
	}

	if cfg.EmbeddingCfg.CacheTTL > 0 {
		embedder = embedding.NewCached(embedder, cfg.EmbeddingCfg.CacheTTL)
		logger.Info("Query embedding cache enabled", zap.Duration("ttl", cfg.EmbeddingCfg.CacheTTL))
	}

	uc, err := rag.NewUsecase(
		embedder,
		generator,
		index,
		documents,
		formatter.NewFactory(),
		cfg.RAGCfg,
		cfg.Prompts,
		logger,
	)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("create rag use case: %w", err)
	}
	core.Usecase = uc
	logger.Info("Use cases initialized")

	bootCtx := pkglogger.WithAction(ctxzap.ToContext(ctx, logger), "bootstrap")
	if err := uc.Bootstrap(bootCtx); err != nil {
		core.Close()
		return nil, fmt.Errorf("bootstrap collection: %w", err)
	}
	logger.Info("Collection ready",
		zap.String("collection", cfg.QdrantCfg.Collection),
		zap.Int("dimension", embedder.Dimension()),
	)

	return core, nil
}

func newEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Provider {
	if cfg.EmbeddingCfg.Backend == config.EmbeddingBackendLocal {
		return embedding.NewLocalConnector(cfg.EmbeddingCfg, logger)
	}
	return embedding.NewGeminiConnector(cfg.EmbeddingCfg, logger)
}

func newGenerator(cfg *config.Config, logger *zap.Logger) rag.Generator {
	if cfg.LLMCfg.Backend == config.LLMBackendOpenAI {
		return llm.NewOpenAIConnector(cfg.LLMCfg, logger)
	}
	return llm.NewGeminiConnector(cfg.LLMCfg, logger)
}

func setupLogger(level string) (*zap.Logger, error) {
	return pkglogger.New(level)
}
