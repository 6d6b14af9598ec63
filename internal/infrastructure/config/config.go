package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIBaseURL string `env:"SNAPMATCH_API_URL, default=http://localhost:8080" validate:"required,url"`
	LogLevel   string `env:"LOG_LEVEL,         default=info"`

	// SessionFile is where the local session record lives. Empty selects
	// a per-user default under the OS config directory.
	SessionFile string `env:"SNAPMATCH_SESSION_FILE"`

	Poll  PollConfig
	Redis RedisConfig
}

type PollConfig struct {
	Interval      time.Duration `env:"SNAPMATCH_POLL_INTERVAL,       default=2s" validate:"gt=0"`
	RetryInterval time.Duration `env:"SNAPMATCH_POLL_RETRY_INTERVAL, default=3s" validate:"gt=0"`
	MaxRetries    int           `env:"SNAPMATCH_POLL_MAX_RETRIES,    default=20" validate:"gte=0"`
}

// RedisConfig enables the shared kiosk session store when Addr is set;
// otherwise the session lives in SessionFile.
type RedisConfig struct {
	Addr string `env:"SNAPMATCH_REDIS_ADDR"`
	DB   int    `env:"SNAPMATCH_REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		// No usable config dir; fall back to the working directory so the
		// engine still runs (with a session that may not survive restarts).
		return ".snapmatch-session.json"
	}
	return filepath.Join(dir, "snapmatch", "session.json")
}
