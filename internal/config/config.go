// Package config defines the ingestion service and capture agent
// configuration.
package config

import (
	"time"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/bridge"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/dispatcher"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/storage"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/summarizer"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/sweeper"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/config"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/logger"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/redisclient"
)

// DefaultPath is the default config file location.
const DefaultPath = "config.yml"

// Service defaults.
const (
	defaultServiceName = "linklens-ingestion"
	defaultPort        = 8080
)

// ServiceConfig holds settings for a LinkLens service instance.
type ServiceConfig struct {
	Name    string `yaml:"name" env:"SERVICE_NAME"`
	Version string `yaml:"version" env:"SERVICE_VERSION"`
	Port    int    `yaml:"port" env:"PORT"`
	Debug   bool   `yaml:"debug" env:"DEBUG"`
}

// AuthConfig holds session token verification settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
}

// DispatchConfig tunes the summarizer dispatch queue.
type DispatchConfig struct {
	QueueSize   int           `yaml:"queue_size" env:"DISPATCH_QUEUE_SIZE"`
	JobTimeout  time.Duration `yaml:"job_timeout" env:"DISPATCH_JOB_TIMEOUT"`
	MaxAttempts int           `yaml:"max_attempts" env:"DISPATCH_MAX_ATTEMPTS"`
}

// Config is the full ingestion service configuration.
type Config struct {
	Service    ServiceConfig     `yaml:"service"`
	Database   storage.Config    `yaml:"database"`
	Redis      redisclient.Config `yaml:"redis"`
	Auth       AuthConfig        `yaml:"auth"`
	Summarizer summarizer.Config `yaml:"summarizer"`
	Dispatch   DispatchConfig    `yaml:"dispatch"`
	Bridge     bridge.Config     `yaml:"bridge"`
	Sweeper    sweeper.Config    `yaml:"sweeper"`
	Capture    dispatcher.Config `yaml:"capture"`
	Logging    logger.Config     `yaml:"logging"`

	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
}

// SetDefaults fills zero-valued fields across all sections. Summarizer
// settings are intentionally left alone: a missing dispatch target is a
// per-request configuration error, not a startup failure.
func (c *Config) SetDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = "dev"
	}
	if c.Service.Port == 0 {
		c.Service.Port = defaultPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Database.SetDefaults()
	c.Bridge.SetDefaults()
	c.Sweeper.SetDefaults()
}

// Validate checks the settings a service cannot start without.
func (c *Config) Validate() error {
	if err := config.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := config.ValidateRequired("auth.jwt_secret", c.Auth.JWTSecret); err != nil {
		return err
	}
	return nil
}

// Load reads the service configuration from the given path.
func Load(path string) (*Config, error) {
	cfg, err := config.LoadWithDefaults(path, (*Config).SetDefaults)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
