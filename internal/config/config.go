package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tdfdash/internal/utils"
)

// EnvPrefix is prepended to every key when reading the environment,
// e.g. TDFDASH_DATA_PATH.
const EnvPrefix = "TDFDASH"

// Global configuration structure.
type Global struct {
	// Data
	DataPath       string `mapstructure:"data_path" yaml:"data_path"`
	DataSheet      string `mapstructure:"data_sheet" yaml:"data_sheet,omitempty"`
	WarehouseDSN   string `mapstructure:"warehouse_dsn" yaml:"warehouse_dsn,omitempty"`
	WarehouseTable string `mapstructure:"warehouse_table" yaml:"warehouse_table"`

	// Chat
	DefaultProvider     string  `mapstructure:"default_provider" yaml:"default_provider"`
	DefaultModel        string  `mapstructure:"default_model" yaml:"default_model"`
	APIKey              string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	OllamaHost          string  `mapstructure:"ollama_host" yaml:"ollama_host"`
	MaxTokens           int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature         float64 `mapstructure:"temperature" yaml:"temperature"`
	GreetingPath        string  `mapstructure:"greeting_path" yaml:"greeting_path,omitempty"`
	DataDescriptionPath string  `mapstructure:"data_description_path" yaml:"data_description_path,omitempty"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Dashboard
	ServerAddr             string `mapstructure:"server_addr" yaml:"server_addr"`
	DensityMinObservations int    `mapstructure:"density_min_observations" yaml:"density_min_observations"`
	DensityGridPoints      int    `mapstructure:"density_grid_points" yaml:"density_grid_points"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// HTTPTimeout returns http_timeout_sec as a duration.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// RetryDelays returns the base and max retry delays.
func (c *Global) RetryDelays() (base, maxDelay time.Duration) {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond, time.Duration(c.RetryMaxDelayMs) * time.Millisecond
}

// Dir returns ~/.tdfdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tdfdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tdfdash/config.yaml.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_path", "data/stages.csv")
	v.SetDefault("data_sheet", "")
	v.SetDefault("warehouse_dsn", "")
	v.SetDefault("warehouse_table", "stages")
	v.SetDefault("default_provider", "openrouter")
	v.SetDefault("default_model", "openai/gpt-4o-mini")
	v.SetDefault("api_key", "")
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("max_tokens", 1024)
	v.SetDefault("temperature", 0.2)
	v.SetDefault("greeting_path", "")
	v.SetDefault("data_description_path", "")
	// HTTP/retry defaults
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("density_min_observations", 5)
	v.SetDefault("density_grid_points", 1000)
	v.SetDefault("log_level", "info")
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
// A .env file in the working directory is read first when present.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.DataPath = utils.ExpandHome(c.DataPath)
	return &c, nil
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{
		"data_path", "data_sheet", "warehouse_dsn", "warehouse_table",
		"default_provider", "default_model", "api_key", "ollama_host",
		"max_tokens", "temperature", "greeting_path", "data_description_path",
		"http_timeout_sec", "retry_max_attempts", "retry_base_delay_ms", "retry_max_delay_ms",
		"server_addr", "density_min_observations", "density_grid_points", "log_level",
	}
}
