package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	AppEnv            string `env:"APP_ENV" envDefault:"development"`
	APIAddr           string `env:"API_ADDR" envDefault:":3000"`
	PostgresDSN       string `env:"POSTGRES_DSN,notEmpty"`
	PollIntervalMS    int    `env:"WORKER_POLL_INTERVAL_MS" envDefault:"1000"`
	ProcessingDelayMS int    `env:"WORKER_PROCESSING_DELAY_MS" envDefault:"2000"`
	BatchSize         int    `env:"WORKER_BATCH_SIZE" envDefault:"5"`
	MaxAttempts       int    `env:"WORKER_MAX_ATTEMPTS" envDefault:"3"`
}

// Load parses configuration from the environment and validates it. Invalid
// configuration is a startup error, never silently defaulted.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.PollIntervalMS <= 0 {
		return errors.Errorf("WORKER_POLL_INTERVAL_MS must be positive, got %d", c.PollIntervalMS)
	}
	if c.ProcessingDelayMS <= 0 {
		return errors.Errorf("WORKER_PROCESSING_DELAY_MS must be positive, got %d", c.ProcessingDelayMS)
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("WORKER_BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.MaxAttempts <= 0 {
		return errors.Errorf("WORKER_MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts)
	}
	return nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c Config) ProcessingDelay() time.Duration {
	return time.Duration(c.ProcessingDelayMS) * time.Millisecond
}
