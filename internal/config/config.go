package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Enrich EnrichConfig `yaml:"enrich" mapstructure:"enrich"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SourceConfig identifies the results site.
type SourceConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FetchConfig configures page downloads.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyKB   int     `yaml:"max_body_kb" mapstructure:"max_body_kb"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// Timeout returns the per-request timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// MaxBodyBytes returns the response body cap in bytes.
func (f FetchConfig) MaxBodyBytes() int64 {
	return int64(f.MaxBodyKB) << 10
}

// EnrichConfig configures profile enrichment.
type EnrichConfig struct {
	// Concurrency above the pipeline's hard cap is clamped, not rejected.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ReportConfig configures report output.
type ReportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STOLTZEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.base_url", "http://stoltzen.no")
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; stoltzen-cli/1.0)")
	v.SetDefault("fetch.max_body_kb", 2048)
	v.SetDefault("fetch.rate_per_sec", 0)
	v.SetDefault("enrich.concurrency", 10)
	v.SetDefault("report.format", "json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks values Load cannot guard with defaults alone.
func (c *Config) Validate() error {
	var problems []string

	if c.Source.BaseURL == "" {
		problems = append(problems, "source.base_url is required")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		problems = append(problems, "fetch.timeout_secs must be > 0")
	}
	if c.Fetch.MaxBodyKB <= 0 {
		problems = append(problems, "fetch.max_body_kb must be > 0")
	}
	if c.Fetch.RatePerSec < 0 {
		problems = append(problems, "fetch.rate_per_sec must be >= 0")
	}
	if c.Enrich.Concurrency < 1 {
		problems = append(problems, "enrich.concurrency must be >= 1")
	}
	switch strings.ToLower(c.Report.Format) {
	case "json", "csv", "xlsx":
	default:
		problems = append(problems, "report.format must be one of json, csv, xlsx")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		problems = append(problems, "log.format must be json or console")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger. Logs go to stderr so stdout
// stays reserved for report output.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

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
