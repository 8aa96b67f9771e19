package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// Default server settings.
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultVisitorCookie  = "abVisitor"
	DefaultDatabasePath   = "abtest.db"
	DefaultAnalyticsAfter = 5 * time.Second
)

// ServerConfig is the YAML configuration of the HTTP host.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	LogFile      string        `yaml:"log_file"`

	Storage   StorageConfig   `yaml:"storage"`
	Analytics AnalyticsConfig `yaml:"analytics"`

	// Experiments is kept as a node so a malformed list only disables
	// evaluation instead of failing startup.
	Experiments yaml.Node `yaml:"experiments"`
}

// StorageConfig configures the durable local store.
type StorageConfig struct {
	DatabasePath  string `yaml:"database_path"`
	VisitorCookie string `yaml:"visitor_cookie"`
}

// AnalyticsConfig configures the analytics integrations. An integration with
// empty credentials is treated as absent.
type AnalyticsConfig struct {
	// TrackingID enables the classic collect integration.
	TrackingID string `yaml:"tracking_id"`
	// MeasurementID and APISecret enable the gtag measurement integration.
	MeasurementID string        `yaml:"measurement_id"`
	APISecret     string        `yaml:"api_secret"`
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
}

// DefaultServerConfig returns the configuration used when no file is given.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         DefaultPort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		Storage: StorageConfig{
			DatabasePath:  DefaultDatabasePath,
			VisitorCookie: DefaultVisitorCookie,
		},
		Analytics: AnalyticsConfig{Timeout: DefaultAnalyticsAfter},
	}
}

// LoadServerConfig reads the file at path over the defaults.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read server config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse server config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings the server cannot start without.
func (c ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Storage.VisitorCookie == "" {
		return fmt.Errorf("storage.visitor_cookie must not be empty")
	}
	return nil
}

// ExperimentList decodes the embedded experiment list.
func (c ServerConfig) ExperimentList() (ExperimentList, error) {
	if c.Experiments.Kind == 0 {
		return ExperimentList{}, fmt.Errorf("%w: no experiments key", domain.ErrConfigurationMissing)
	}
	return ParseNode(&c.Experiments)
}
