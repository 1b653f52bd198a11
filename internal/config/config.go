package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	DBPath       string `env:"DB_PATH"`

	MaxTokensPerChunk int  `env:"MAX_TOKENS_PER_CHUNK" envDefault:"900"`
	MaxChunks         int  `env:"MAX_CHUNKS"           envDefault:"0"`
	MinInputLength    int  `env:"MIN_INPUT_LENGTH"     envDefault:"50"`
	MaxInputLength    int  `env:"MAX_INPUT_LENGTH"     envDefault:"60000"`
	RejectOverlong    bool `env:"REJECT_OVERLONG"      envDefault:"false"`
	StripURLs         bool `env:"STRIP_URLS"           envDefault:"true"`

	MaxConcurrentRequests int64         `env:"MAX_CONCURRENT_REQUESTS" envDefault:"4"`
	MaxWorkers            int           `env:"MAX_WORKERS"             envDefault:"3"`
	TaskTimeout           time.Duration `env:"TASK_TIMEOUT"            envDefault:"30s"`
	RetryMaxAttempts      int           `env:"RETRY_MAX_ATTEMPTS"      envDefault:"3"`
	RetryBaseDelay        time.Duration `env:"RETRY_BASE_DELAY"        envDefault:"1s"`
	FailureThreshold      int           `env:"FAILURE_THRESHOLD"       envDefault:"2"`

	InitMaxAttempts int           `env:"INIT_MAX_ATTEMPTS" envDefault:"3"`
	InitBaseDelay   time.Duration `env:"INIT_BASE_DELAY"   envDefault:"5s"`

	CacheMaxEntries int           `env:"CACHE_MAX_ENTRIES" envDefault:"1024"`
	CacheTTL        time.Duration `env:"CACHE_TTL"         envDefault:"1h"`
	StoreRetention  time.Duration `env:"STORE_RETENTION"   envDefault:"168h"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
