package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/codebuildervaibhav/podcast-transcriber/internal/types"
)

// Config is built once at startup and passed by reference into every
// component. Precedence: compiled defaults, then the yaml file, then
// environment variables.
type Config struct {
	Server struct {
		Host  string `yaml:"host" envconfig:"HOST"`
		Port  int    `yaml:"port" envconfig:"PORT"`
		Debug bool   `yaml:"debug" envconfig:"DEBUG"`
	} `yaml:"server"`

	Whisper struct {
		Backend      string `yaml:"backend" envconfig:"WHISPER_BACKEND"` // local or openai
		Model        string `yaml:"model" envconfig:"WHISPER_MODEL"`
		Python       string `yaml:"python" envconfig:"WHISPER_PYTHON"`
		Language     string `yaml:"language" envconfig:"WHISPER_LANGUAGE"` // empty means auto-detect
		OpenAIAPIKey string `yaml:"openai_api_key" envconfig:"OPENAI_API_KEY"`
		SlowFactor   int    `yaml:"slow_factor" envconfig:"WHISPER_SLOW_FACTOR"`
	} `yaml:"whisper"`

	Workers struct {
		Count     int `yaml:"count" envconfig:"WORKER_COUNT"`
		QueueSize int `yaml:"queue_size" envconfig:"QUEUE_SIZE"`
	} `yaml:"workers"`

	Scratch struct {
		Dir                  string `yaml:"dir" envconfig:"SCRATCH_DIR"`
		SweepIntervalMinutes int    `yaml:"sweep_interval_minutes" envconfig:"SCRATCH_SWEEP_INTERVAL_MINUTES"`
		MaxAgeMinutes        int    `yaml:"max_age_minutes" envconfig:"SCRATCH_MAX_AGE_MINUTES"`
	} `yaml:"scratch"`

	Download struct {
		TimeoutMinutes int `yaml:"timeout_minutes" envconfig:"DOWNLOAD_TIMEOUT_MINUTES"`
		MaxSizeMB      int `yaml:"max_size_mb" envconfig:"DOWNLOAD_MAX_SIZE_MB"`
	} `yaml:"download"`
}

// Load builds the configuration. The yaml file at path is optional; a
// missing file leaves the compiled defaults in place.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env-only configuration
		default:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// Sections are processed individually so the envconfig tags are looked
	// up verbatim (PORT, not SERVER_PORT).
	sections := []interface{}{
		&cfg.Server, &cfg.Whisper, &cfg.Workers, &cfg.Scratch, &cfg.Download,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("apply environment overrides: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 5000
	cfg.Whisper.Backend = "local"
	cfg.Whisper.Model = types.DefaultModelSize
	cfg.Whisper.Python = "python3"
	cfg.Whisper.SlowFactor = 3
	cfg.Workers.Count = 2
	cfg.Workers.QueueSize = 16
	cfg.Scratch.Dir = "temp_audio"
	cfg.Scratch.SweepIntervalMinutes = 30
	cfg.Scratch.MaxAgeMinutes = 120
	cfg.Download.TimeoutMinutes = 15
	cfg.Download.MaxSizeMB = 512
	return cfg
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if !types.ValidModelSize(c.Whisper.Model) {
		return fmt.Errorf("invalid whisper model %q (valid: tiny, base, small, medium, large)", c.Whisper.Model)
	}
	switch c.Whisper.Backend {
	case "local":
	case "openai":
		if c.Whisper.OpenAIAPIKey == "" {
			return fmt.Errorf("openai backend selected but OPENAI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown whisper backend %q (valid: local, openai)", c.Whisper.Backend)
	}
	if c.Workers.Count < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", c.Workers.Count)
	}
	if c.Workers.QueueSize < 1 {
		return fmt.Errorf("queue size must be at least 1, got %d", c.Workers.QueueSize)
	}
	if c.Download.TimeoutMinutes < 1 {
		return fmt.Errorf("download timeout must be at least 1 minute, got %d", c.Download.TimeoutMinutes)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DownloadTimeout bounds a single acquisition.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutMinutes) * time.Minute
}

// MaxDownloadBytes caps the size of a direct download.
func (c *Config) MaxDownloadBytes() int64 {
	return int64(c.Download.MaxSizeMB) * 1024 * 1024
}

// SweepInterval is how often the scratch sweeper runs.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Scratch.SweepIntervalMinutes) * time.Minute
}

// ScratchMaxAge is how old a scratch file may get before the sweeper
// removes it.
func (c *Config) ScratchMaxAge() time.Duration {
	return time.Duration(c.Scratch.MaxAgeMinutes) * time.Minute
}
