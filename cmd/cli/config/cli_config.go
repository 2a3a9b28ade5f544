package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// CLIConfig holds the CLI's persisted settings.
type CLIConfig struct {
	ServerURL     string         `mapstructure:"server_url"`
	DefaultOutput string         `mapstructure:"default_output"`
	Pipeline      PipelineConfig `mapstructure:"pipeline"`
	Preferences   Preferences    `mapstructure:"preferences"`
}

// PipelineConfig holds the cleaning knobs a user can pin in the config
// file instead of passing flags on every run. Zero values defer to the
// built-in defaults.
type PipelineConfig struct {
	NumericThreshold float64 `mapstructure:"numeric_threshold"`
	DateThreshold    float64 `mapstructure:"date_threshold"`
	CategoricalRatio float64 `mapstructure:"categorical_ratio"`
	IQRMultiplier    float64 `mapstructure:"iqr_multiplier"`
	ColumnWorkers    int     `mapstructure:"column_workers"`
}

type Preferences struct {
	ColorOutput bool   `mapstructure:"color_output"`
	TimeZone    string `mapstructure:"timezone"`
}

// LoadConfig loads the CLI config from cfgFile, or from
// $HOME/.csvclean/config.yaml when cfgFile is empty. A missing file is
// not an error.
func LoadConfig(cfgFile string) (*CLIConfig, error) {
	config := &CLIConfig{
		ServerURL:     "http://localhost:8080",
		DefaultOutput: "cleaned_data.csv",
		Preferences: Preferences{
			ColorOutput: true,
			TimeZone:    "UTC",
		},
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		configPath := filepath.Join(home, ".csvclean")
		viper.AddConfigPath(configPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CSVCLEAN")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", config.ServerURL)
	viper.SetDefault("default_output", config.DefaultOutput)
	viper.SetDefault("preferences.color_output", config.Preferences.ColorOutput)
	viper.SetDefault("preferences.timezone", config.Preferences.TimeZone)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// SaveConfig persists the CLI config to cfgFile, or to the default path
// when cfgFile is empty.
func SaveConfig(config *CLIConfig, cfgFile string) error {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		configDir := filepath.Join(home, ".csvclean")
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		cfgFile = filepath.Join(configDir, "config.yaml")
	}

	viper.Set("server_url", config.ServerURL)
	viper.Set("default_output", config.DefaultOutput)
	viper.Set("pipeline", config.Pipeline)
	viper.Set("preferences", config.Preferences)

	return viper.WriteConfigAs(cfgFile)
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".csvclean", "config.yaml")
}
