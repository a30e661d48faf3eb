package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration shared by the services.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"`
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"`
	QueueURL      string `env:"QUEUE_URL"`

	// Token counting
	TokenizerEncoding string `env:"TOKENIZER_ENCODING" envDefault:"cl100k_base"`
	MaxTokens         int    `env:"MAX_TOKENS" envDefault:"1200"`
	MaxSplitDepth     int    `env:"MAX_SPLIT_DEPTH" envDefault:"5"`
	MinSectionChars   int    `env:"MIN_SECTION_CHARS" envDefault:"16"`
	PipelineWorkers   int    `env:"PIPELINE_WORKERS" envDefault:"4"`

	// Sections whose subtrees are dropped during flattening. Empty value
	// keeps the built-in boilerplate list.
	IgnoreSections []string `env:"IGNORE_SECTIONS" envSeparator:","`

	// Token-count cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"noop"` // "redis" or "noop"
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Embeddings
	OpenAIKey      string `env:"OPENAI_API_KEY"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
