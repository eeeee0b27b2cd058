// Package config handles loading and managing finscope configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/finscope/finscope/pkg/scoring"
)

// EnvPrefix is prepended to every environment override, e.g.
// FINSCOPE_SERVER_ADDR for server.addr.
const EnvPrefix = "FINSCOPE"

// Config is the top-level configuration for finscope.
type Config struct {
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Summary SummaryConfig `yaml:"summary" mapstructure:"summary"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// ScoringConfig controls which models run and overrides curve bounds.
type ScoringConfig struct {
	Models    []string           `yaml:"models" mapstructure:"models"`
	Overrides map[string]float64 `yaml:"overrides,omitempty" mapstructure:"overrides"`
}

// StorageConfig selects where bundles and reports are kept.
type StorageConfig struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // local, s3 or gcs
	Bucket   string `yaml:"bucket,omitempty" mapstructure:"bucket"`
	Dir      string `yaml:"dir,omitempty" mapstructure:"dir"`
	Region   string `yaml:"region,omitempty" mapstructure:"region"`
	Endpoint string `yaml:"endpoint,omitempty" mapstructure:"endpoint"` // S3-compatible stores
}

// SummaryConfig controls the narrative summary call.
type SummaryConfig struct {
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
}

// ServerConfig is used by the finscoped daemon.
type ServerConfig struct {
	Addr        string `yaml:"addr" mapstructure:"addr"`
	DatabaseURL string `yaml:"database_url,omitempty" mapstructure:"database_url"`
	APIKey      string `yaml:"-" mapstructure:"api_key"`
	CacheSize   int    `yaml:"cache_size" mapstructure:"cache_size"`
}

// BatchConfig controls the batch command.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Scoring: ScoringConfig{
			Models:    append([]string(nil), scoring.ModelKeys...),
			Overrides: map[string]float64{},
		},
		Storage: StorageConfig{Backend: "local"},
		Summary: SummaryConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 1024,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			CacheSize: 256,
		},
		Batch: BatchConfig{Concurrency: 4},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("scoring.models", d.Scoring.Models)
	v.SetDefault("scoring.overrides", d.Scoring.Overrides)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.dir", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("summary.model", d.Summary.Model)
	v.SetDefault("summary.max_tokens", d.Summary.MaxTokens)
	v.SetDefault("summary.api_key", "")
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.database_url", "")
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.cache_size", d.Server.CacheSize)
	v.SetDefault("batch.concurrency", d.Batch.Concurrency)
}

// Load reads a config file from the given path, layering FINSCOPE_*
// environment variables on top. An empty path or a file that does not
// exist yields the defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// The conventional variable works too.
	if err := v.BindEnv("summary.api_key", EnvPrefix+"_SUMMARY_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, eris.Wrap(err, "config: read file")
			}
		} else if !os.IsNotExist(err) {
			return nil, eris.Wrap(err, "config: stat file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail far from their source.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "local", "s3", "gcs":
	default:
		return eris.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != "local" && c.Storage.Bucket == "" {
		return eris.Errorf("config: storage backend %q requires a bucket", c.Storage.Backend)
	}
	if c.Batch.Concurrency < 1 {
		return eris.Errorf("config: batch concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	if _, err := c.Scoring.Params(); err != nil {
		return err
	}
	return nil
}

// Params returns the scoring parameters with overrides applied.
func (s ScoringConfig) Params() (scoring.Params, error) {
	p := scoring.Defaults()
	if err := p.Override(s.Overrides); err != nil {
		return p, eris.Wrap(err, "config: scoring overrides")
	}
	return p, nil
}

// BuildModels builds the configured scoring models.
func (s ScoringConfig) BuildModels() ([]scoring.Model, error) {
	p, err := s.Params()
	if err != nil {
		return nil, err
	}
	models, err := scoring.ModelsByKey(p, s.Models...)
	if err != nil {
		return nil, eris.Wrap(err, "config: scoring models")
	}
	return models, nil
}

// WriteDefault writes the default config to path, creating parent
// directories. Secrets are never written.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "config: create dir")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "config: write file")
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return eris.Wrapf(err, "config: load %s", p)
		}
	}
	return nil
}

// InitLogger builds the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// FindConfigFile looks for .finscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".finscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns ~/.cache/finscope.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "finscope")
}

// ReportDir returns the local report directory, honoring storage.dir.
func (c *Config) ReportDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(CacheDir(), "reports")
}
