// Package config loads application configuration from an optional YAML
// file, environment variables, and an optional .env file, in that order
// of increasing precedence for the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/internal/report"
	"github.com/inferloop/csvclean/pkg/constants"
)

// Config contains the full application configuration
type Config struct {
	Server   ServerConfig   `json:"server" mapstructure:"server"`
	Metrics  MetricsConfig  `json:"metrics" mapstructure:"metrics"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
	Pipeline PipelineConfig `json:"pipeline" mapstructure:"pipeline"`
	Report   report.Config  `json:"report" mapstructure:"report"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host          string        `json:"host" mapstructure:"host"`
	Port          int           `json:"port" mapstructure:"port"`
	ReadTimeout   time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout   time.Duration `json:"idle_timeout" mapstructure:"idle_timeout"`
	MaxUploadSize int64         `json:"max_upload_size" mapstructure:"max_upload_size"`
	EnableCORS    bool          `json:"enable_cors" mapstructure:"enable_cors"`
}

// MetricsConfig contains Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Port    int    `json:"port" mapstructure:"port"`
	Path    string `json:"path" mapstructure:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// PipelineConfig contains cleaning pipeline settings
type PipelineConfig struct {
	NumericThreshold float64       `json:"numeric_threshold" mapstructure:"numeric_threshold"`
	DateThreshold    float64       `json:"date_threshold" mapstructure:"date_threshold"`
	CategoricalRatio float64       `json:"categorical_ratio" mapstructure:"categorical_ratio"`
	IQRMultiplier    float64       `json:"iqr_multiplier" mapstructure:"iqr_multiplier"`
	ColumnWorkers    int           `json:"column_workers" mapstructure:"column_workers"`
	Timeout          time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          constants.DefaultHost,
			Port:          constants.DefaultPort,
			ReadTimeout:   constants.DefaultReadTimeout,
			WriteTimeout:  constants.DefaultWriteTimeout,
			IdleTimeout:   constants.DefaultIdleTimeout,
			MaxUploadSize: constants.MaxUploadSize,
			EnableCORS:    true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    constants.DefaultMetricsPort,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  constants.DefaultLogLevel,
			Format: constants.DefaultLogFormat,
		},
		Pipeline: PipelineConfig{
			NumericThreshold: constants.DefaultNumericThreshold,
			DateThreshold:    constants.DefaultDateThreshold,
			CategoricalRatio: constants.DefaultCategoricalRatio,
			IQRMultiplier:    constants.DefaultIQRMultiplier,
			ColumnWorkers:    constants.DefaultColumnWorkers,
			Timeout:          constants.DefaultCleaningTimeout,
		},
		Report: *report.DefaultConfig(),
	}
}

// Load reads configuration from the given file (optional), the
// environment, and a .env file in the working directory if present.
// Environment variables use the CSVCLEAN_ prefix with underscores for
// nesting, e.g. CSVCLEAN_SERVER_PORT. The provider key variables
// OPENAI_API_KEY, GROQ_API_KEY, and AI_PROVIDER are read unprefixed for
// compatibility with existing deployments.
func Load(configFile string) (*Config, error) {
	// Best effort: a missing .env is not an error.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CSVCLEAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyProviderEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", defaults.Server.IdleTimeout)
	v.SetDefault("server.max_upload_size", defaults.Server.MaxUploadSize)
	v.SetDefault("server.enable_cors", defaults.Server.EnableCORS)

	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.port", defaults.Metrics.Port)
	v.SetDefault("metrics.path", defaults.Metrics.Path)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("pipeline.numeric_threshold", defaults.Pipeline.NumericThreshold)
	v.SetDefault("pipeline.date_threshold", defaults.Pipeline.DateThreshold)
	v.SetDefault("pipeline.categorical_ratio", defaults.Pipeline.CategoricalRatio)
	v.SetDefault("pipeline.iqr_multiplier", defaults.Pipeline.IQRMultiplier)
	v.SetDefault("pipeline.column_workers", defaults.Pipeline.ColumnWorkers)
	v.SetDefault("pipeline.timeout", defaults.Pipeline.Timeout)

	v.SetDefault("report.provider", defaults.Report.Provider)
	v.SetDefault("report.model", defaults.Report.Model)
	v.SetDefault("report.timeout", defaults.Report.Timeout)
	v.SetDefault("report.max_tokens", defaults.Report.MaxTokens)
	v.SetDefault("report.temperature", defaults.Report.Temperature)
}

// applyProviderEnv honors the unprefixed provider variables used by
// existing deployments: AI_PROVIDER selects the provider, and the
// matching *_API_KEY supplies the credential.
func applyProviderEnv(config *Config) {
	env := viper.New()
	env.AutomaticEnv()

	if provider := env.GetString("AI_PROVIDER"); provider != "" {
		config.Report.Provider = provider
	}
	if config.Report.APIKey == "" {
		switch strings.ToLower(config.Report.Provider) {
		case "groq":
			config.Report.APIKey = env.GetString("GROQ_API_KEY")
		default:
			config.Report.APIKey = env.GetString("OPENAI_API_KEY")
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if c.Pipeline.NumericThreshold <= 0 || c.Pipeline.NumericThreshold > 1 {
		return fmt.Errorf("numeric threshold must be in (0, 1]")
	}
	if c.Pipeline.DateThreshold <= 0 || c.Pipeline.DateThreshold > 1 {
		return fmt.Errorf("date threshold must be in (0, 1]")
	}
	if c.Pipeline.CategoricalRatio <= 0 || c.Pipeline.CategoricalRatio > 1 {
		return fmt.Errorf("categorical ratio must be in (0, 1]")
	}
	if c.Pipeline.IQRMultiplier <= 0 {
		return fmt.Errorf("IQR multiplier must be positive")
	}
	if c.Pipeline.ColumnWorkers < 1 {
		return fmt.Errorf("column workers must be at least 1")
	}
	return nil
}

// Address returns the HTTP listen address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PipelineConfig converts the settings into a cleaning pipeline config.
func (c *Config) PipelineConfig() *cleaning.Config {
	pc := cleaning.DefaultConfig()
	pc.Classifier.NumericThreshold = c.Pipeline.NumericThreshold
	pc.Classifier.DateThreshold = c.Pipeline.DateThreshold
	pc.Classifier.CategoricalRatio = c.Pipeline.CategoricalRatio
	pc.IQRMultiplier = c.Pipeline.IQRMultiplier
	pc.ColumnWorkers = c.Pipeline.ColumnWorkers
	return pc
}
