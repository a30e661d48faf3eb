package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go"

	"doc-segmenter/internal/cache"
	"doc-segmenter/internal/config"
	"doc-segmenter/internal/embeddings"
	"doc-segmenter/internal/logger"
	"doc-segmenter/internal/pipeline"
	"doc-segmenter/internal/queue"
	"doc-segmenter/internal/section"
	"doc-segmenter/internal/store"
	"doc-segmenter/internal/tokenizer"
)

// Deps bundles common runtime dependencies for services. Each Build
// variant fills only what its service needs.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Queue    queue.Queue
	Embedder embeddings.Embedder
	Counter  tokenizer.Counter
	Cache    cache.Cache
	Pipeline *pipeline.Pipeline
}

// BuildGateway wires the HTTP gateway: store, queue, and an embedder for
// search queries.
func BuildGateway() (Deps, error) {
	deps, err := buildBase()
	if err != nil {
		return Deps{}, err
	}
	deps.Embedder, err = buildEmbedder(deps.Config, deps.Log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return deps, nil
}

// BuildSegmenter wires the segmentation worker: store, queue, token
// counter (optionally memoized through Redis), and the pipeline.
func BuildSegmenter() (Deps, error) {
	deps, err := buildBase()
	if err != nil {
		return Deps{}, err
	}
	deps.Cache, err = buildCache(deps.Config, deps.Log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	deps.Counter, err = buildCounter(deps.Config, deps.Cache, deps.Log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	deps.Pipeline, err = pipeline.New(deps.Counter, pipelineOptions(deps.Config), deps.Log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	return deps, nil
}

// BuildIndexer wires the embedding worker: store, queue, embedder.
func BuildIndexer() (Deps, error) {
	deps, err := buildBase()
	if err != nil {
		return Deps{}, err
	}
	deps.Embedder, err = buildEmbedder(deps.Config, deps.Log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return deps, nil
}

func buildBase() (Deps, error) {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine in containerized deployments.
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{Config: cfg, Log: log, Store: st, Queue: q}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when CACHE_PROVIDER=redis")
		}
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, token counts will not be memoized", "err", err)
			return cache.NewNoOpCache(), nil
		}
		log.Info("using Redis token-count cache")
		return c, nil
	case "noop":
		return cache.NewNoOpCache(), nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, noop)", cfg.CacheProvider)
	}
}

func buildCounter(cfg config.Config, c cache.Cache, log *slog.Logger) (tokenizer.Counter, error) {
	base, err := tokenizer.NewTiktoken(cfg.TokenizerEncoding)
	if err != nil {
		return nil, err
	}
	log.Info("using tiktoken counter", "encoding", cfg.TokenizerEncoding)
	return tokenizer.NewCached(base, c, log), nil
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Embedder, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	embedder, err := embeddings.NewOpenAIEmbedder(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
	}
	log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)
	return embedder, nil
}

func pipelineOptions(cfg config.Config) pipeline.Options {
	ignore := section.DefaultIgnoreSet()
	if len(cfg.IgnoreSections) > 0 {
		ignore = section.NewIgnoreSet(cfg.IgnoreSections...)
	}
	return pipeline.Options{
		MaxTokens:       cfg.MaxTokens,
		MinSectionChars: cfg.MinSectionChars,
		MaxDepth:        cfg.MaxSplitDepth,
		Ignore:          ignore,
		Workers:         cfg.PipelineWorkers,
	}
}
