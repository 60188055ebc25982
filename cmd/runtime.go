package cmd

import (
	"os"
	"strings"

	"github.com/KaramelBytes/tdfdash/internal/ai"
	cfgpkg "github.com/KaramelBytes/tdfdash/internal/config"
)

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

// buildRuntime resolves the chat provider from flags, env and config.
func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	base, maxDelay := cfg.RetryDelays()
	providerName := strings.TrimSpace(opts.ProviderFlag)
	if providerName == "" {
		providerName = cfg.DefaultProvider
	}
	if providerName == "" {
		providerName = ai.ProviderOpenRouter
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	host := strings.TrimSpace(opts.OllamaHost)
	if host == "" {
		host = cfg.OllamaHost
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: cfg.HTTPTimeout(),
		RetryMax:    cfg.RetryMaxAttempts,
		BaseDelay:   base,
		MaxDelay:    maxDelay,
		APIKey:      apiKey,
		Host:        host,
	}
	rt, err := ai.MustRuntime(providerName, rc)
	if err != nil {
		return nil, "", err
	}
	return rt, ai.NormalizeProvider(providerName), nil
}

func selectModel(cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return "openai/gpt-4o-mini"
}
