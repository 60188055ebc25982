package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tdfdash/internal/ai"
	cfgpkg "github.com/KaramelBytes/tdfdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tdfdash configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		for _, key := range cfgpkg.Keys() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, configValue(cfg, key))
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// start from the file and env only, so --data and friends are not persisted
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), success("Saved %s", key))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func configValue(c *cfgpkg.Global, key string) string {
	switch key {
	case "data_path":
		return c.DataPath
	case "data_sheet":
		return c.DataSheet
	case "warehouse_dsn":
		return mask(c.WarehouseDSN)
	case "warehouse_table":
		return c.WarehouseTable
	case "default_provider":
		return c.DefaultProvider
	case "default_model":
		return c.DefaultModel
	case "api_key":
		return mask(c.APIKey)
	case "ollama_host":
		return c.OllamaHost
	case "max_tokens":
		return strconv.Itoa(c.MaxTokens)
	case "temperature":
		return fmt.Sprintf("%.3f", c.Temperature)
	case "greeting_path":
		return c.GreetingPath
	case "data_description_path":
		return c.DataDescriptionPath
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return strconv.Itoa(c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return strconv.Itoa(c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return strconv.Itoa(c.RetryMaxDelayMs)
	case "server_addr":
		return c.ServerAddr
	case "density_min_observations":
		return strconv.Itoa(c.DensityMinObservations)
	case "density_grid_points":
		return strconv.Itoa(c.DensityGridPoints)
	case "log_level":
		return c.LogLevel
	}
	return ""
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	positive := func(dst *int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	switch key {
	case "data_path":
		c.DataPath = val
	case "data_sheet":
		c.DataSheet = val
	case "warehouse_dsn":
		c.WarehouseDSN = val
	case "warehouse_table":
		c.WarehouseTable = val
	case "default_provider":
		p := ai.NormalizeProvider(val)
		if p == "" {
			return fmt.Errorf("invalid default_provider: %s (use openrouter or ollama)", val)
		}
		c.DefaultProvider = p
	case "default_model":
		c.DefaultModel = val
	case "api_key":
		c.APIKey = val
	case "ollama_host":
		c.OllamaHost = val
	case "max_tokens":
		return positive(&c.MaxTokens)
	case "temperature":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid float for temperature: %v (0-2)", val)
		}
		c.Temperature = f
	case "greeting_path":
		c.GreetingPath = val
	case "data_description_path":
		c.DataDescriptionPath = val
	case "http_timeout_sec":
		return positive(&c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return positive(&c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return positive(&c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return positive(&c.RetryMaxDelayMs)
	case "server_addr":
		c.ServerAddr = val
	case "density_min_observations":
		return positive(&c.DensityMinObservations)
	case "density_grid_points":
		return positive(&c.DensityGridPoints)
	case "log_level":
		if _, err := logrus.ParseLevel(val); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
		c.LogLevel = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys(), ", "))
	}
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
