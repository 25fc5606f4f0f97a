package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/mini-rag/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	EmbeddingBackendGemini = "gemini"
	EmbeddingBackendLocal  = "local"

	LLMBackendGemini = "gemini"
	LLMBackendOpenAI = "openai"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`
	UploadDir  string `env:"UPLOAD_DIR" envDefault:"uploads"`

	// Document registry; in-memory when empty
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"1"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	EmbeddingCfg EmbeddingConfig `envPrefix:"EMBEDDING_"`
	LLMCfg       LLMConfig       `envPrefix:"LLM_"`
	QdrantCfg    QdrantConfig    `envPrefix:"QDRANT_"`

	// Retrieval pipeline
	RAGCfg RAGConfig `envPrefix:"RAG_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Prompt templates (loaded from YAML file)
	Prompts Prompts

	// Environment (set from flag, not from env var)
	Environment string
}

type EmbeddingConfig struct {
	HTTPClientConfig
	Backend   string               `env:"BACKEND" envDefault:"gemini"`
	Model     string               `env:"MODEL"`
	APIKey    string               `env:"API_KEY"`
	Dimension int                  `env:"DIMENSION"`
	CacheTTL  time.Duration        `env:"CACHE_TTL" envDefault:"0s"`
	Retry     pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type LLMConfig struct {
	HTTPClientConfig
	Backend string               `env:"BACKEND" envDefault:"gemini"`
	Model   string               `env:"MODEL"`
	APIKey  string               `env:"API_KEY"`
	Retry   pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type QdrantConfig struct {
	HTTPClientConfig
	APIKey     string               `env:"API_KEY"`
	Collection string               `env:"COLLECTION" envDefault:"mini_rag_loc"`
	Retry      pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Url                   string        `env:"SERVICE_URL"`
}

// RAGConfig tunes the retrieval and synthesis pipeline
type RAGConfig struct {
	ChunkSize     int `env:"CHUNK_SIZE" envDefault:"500"`
	TopK          int `env:"TOP_K" envDefault:"5"`
	ContextSize   int `env:"CONTEXT_SIZE" envDefault:"3"`
	ScrollLimit   int `env:"SCROLL_LIMIT" envDefault:"100"`
	SummaryChunks int `env:"SUMMARY_CHUNKS" envDefault:"20"`
	HistoryTurns  int `env:"HISTORY_TURNS" envDefault:"6"`
	// RelevanceThreshold drops retrieved points scoring below it; 0 keeps everything
	RelevanceThreshold float64 `env:"RELEVANCE_THRESHOLD" envDefault:"0"`
	PromptsFile        string  `env:"PROMPTS_FILE" envDefault:"internal/config/prompts.yaml"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`   // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
}

// LoadConfig reads the -env flag and loads configuration for that environment
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load loads .env.<environment> (if present) and parses the process environment
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	cfg.Environment = environment

	return cfg, nil
}

// Parse builds the configuration from the current process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	applyBackendDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	prompts, err := LoadPrompts(cfg.RAGCfg.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	cfg.Prompts = *prompts

	return cfg, nil
}

func applyBackendDefaults(cfg *Config) {
	emb := &cfg.EmbeddingCfg
	switch emb.Backend {
	case EmbeddingBackendGemini:
		if emb.Model == "" {
			emb.Model = "text-embedding-004"
		}
		if emb.Dimension == 0 {
			emb.Dimension = 768
		}
		if emb.Url == "" {
			emb.Url = "https://generativelanguage.googleapis.com/v1beta"
		}
	case EmbeddingBackendLocal:
		if emb.Model == "" {
			emb.Model = "all-minilm"
		}
		if emb.Dimension == 0 {
			emb.Dimension = 384
		}
		if emb.Url == "" {
			emb.Url = "http://localhost:11434/v1"
		}
	}

	llm := &cfg.LLMCfg
	switch llm.Backend {
	case LLMBackendGemini:
		if llm.Model == "" {
			llm.Model = "gemini-2.5-flash"
		}
		if llm.Url == "" {
			llm.Url = "https://generativelanguage.googleapis.com/v1beta"
		}
	case LLMBackendOpenAI:
		if llm.Model == "" {
			llm.Model = "gpt-4o-mini"
		}
		if llm.Url == "" {
			llm.Url = "https://api.openai.com/v1"
		}
	}

	if cfg.QdrantCfg.Url == "" {
		cfg.QdrantCfg.Url = "http://localhost:6333"
	}

	for _, rc := range []*pkgRetry.RetryConfig{&emb.Retry, &llm.Retry, &cfg.QdrantCfg.Retry} {
		rc.ApplyDefaults()
	}
}

func validateConfig(cfg *Config) error {
	var errs []error

	if cfg.EmbeddingCfg.Backend != EmbeddingBackendGemini && cfg.EmbeddingCfg.Backend != EmbeddingBackendLocal {
		errs = append(errs, fmt.Errorf("EMBEDDING_BACKEND must be %q or %q, got %q",
			EmbeddingBackendGemini, EmbeddingBackendLocal, cfg.EmbeddingCfg.Backend))
	}

	if cfg.LLMCfg.Backend != LLMBackendGemini && cfg.LLMCfg.Backend != LLMBackendOpenAI {
		errs = append(errs, fmt.Errorf("LLM_BACKEND must be %q or %q, got %q",
			LLMBackendGemini, LLMBackendOpenAI, cfg.LLMCfg.Backend))
	}

	if !cfg.EnableMocks {
		if cfg.EmbeddingCfg.Backend == EmbeddingBackendGemini && cfg.EmbeddingCfg.APIKey == "" {
			errs = append(errs, errors.New("EMBEDDING_API_KEY is required for the gemini embedding backend"))
		}
		if cfg.LLMCfg.APIKey == "" {
			errs = append(errs, errors.New("LLM_API_KEY is required"))
		}
	}

	if cfg.EmbeddingCfg.Dimension < 1 {
		errs = append(errs, fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", cfg.EmbeddingCfg.Dimension))
	}

	if cfg.RAGCfg.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("RAG_CHUNK_SIZE must be positive, got %d", cfg.RAGCfg.ChunkSize))
	}

	if cfg.RAGCfg.TopK < 1 || cfg.RAGCfg.TopK > 100 {
		errs = append(errs, fmt.Errorf("RAG_TOP_K must be between 1 and 100, got %d", cfg.RAGCfg.TopK))
	}

	if cfg.RAGCfg.ContextSize < 1 || cfg.RAGCfg.ContextSize > cfg.RAGCfg.TopK {
		errs = append(errs, fmt.Errorf("RAG_CONTEXT_SIZE must be between 1 and RAG_TOP_K(%d), got %d",
			cfg.RAGCfg.TopK, cfg.RAGCfg.ContextSize))
	}

	if cfg.RAGCfg.SummaryChunks < 1 || cfg.RAGCfg.SummaryChunks > cfg.RAGCfg.ScrollLimit {
		errs = append(errs, fmt.Errorf("RAG_SUMMARY_CHUNKS must be between 1 and RAG_SCROLL_LIMIT(%d), got %d",
			cfg.RAGCfg.ScrollLimit, cfg.RAGCfg.SummaryChunks))
	}

	if cfg.RAGCfg.HistoryTurns < 0 {
		errs = append(errs, fmt.Errorf("RAG_HISTORY_TURNS must not be negative, got %d", cfg.RAGCfg.HistoryTurns))
	}

	if cfg.RAGCfg.RelevanceThreshold < 0 || cfg.RAGCfg.RelevanceThreshold > 1 {
		errs = append(errs, fmt.Errorf("RAG_RELEVANCE_THRESHOLD must be between 0 and 1, got %g", cfg.RAGCfg.RelevanceThreshold))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(msgs, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
