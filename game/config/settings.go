package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings holds the server options read from the environment. Command line
// flags override them.
type Settings struct {
	Host          string        `env:"SANTORINI_HOST" envDefault:"localhost"`
	Port          int           `env:"SANTORINI_PORT" envDefault:"8080"`
	ConfigDir     string        `env:"SANTORINI_CONFIG_DIR" envDefault:"configs"`
	DefaultPreset string        `env:"SANTORINI_DEFAULT_PRESET" envDefault:"classic"`
	SessionTTL    time.Duration `env:"SANTORINI_SESSION_TTL" envDefault:"24h"`
	ClockSweep    time.Duration `env:"SANTORINI_CLOCK_SWEEP" envDefault:"1s"`
	APIURL        string        `env:"SANTORINI_API_URL"`
	Debug         bool          `env:"SANTORINI_DEBUG"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.ClockSweep <= 0 {
		return nil, fmt.Errorf("parse env: SANTORINI_CLOCK_SWEEP must be positive, got %s", s.ClockSweep)
	}
	return &s, nil
}

// Addr returns the host:port the server listens on
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BaseURL returns the API address clients should use
func (s *Settings) BaseURL() string {
	if s.APIURL != "" {
		return s.APIURL
	}
	return "http://" + s.Addr()
}
