package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tdfdash/internal/chat"
	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/server"
	"github.com/KaramelBytes/tdfdash/internal/utils"
)

var (
	serveAddr     string
	serveWatch    bool
	serveProvider string
	serveModel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API, charts and chat sessions over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg, name, err := newRegistry(ctx, serveProvider, serveModel, "")
		if err != nil {
			return err
		}
		defer reg.Close()

		srv := server.New(reg, name, densityOptions())
		if serveWatch && cfg.WarehouseDSN == "" {
			go func() {
				err := server.WatchData(ctx, cfg.DataPath, func(ctx context.Context) error {
					return srv.Reload(ctx, sourceOptions())
				})
				if err != nil {
					logrus.Errorf("data watcher stopped: %v", err)
				}
			}()
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.ServerAddr
		}
		return srv.Run(ctx, addr)
	},
}

// newRegistry opens the data and prepares chat sessions over it. It returns
// the registry and the source name.
func newRegistry(ctx context.Context, provider, model, ollamaHost string) (*chat.Registry, string, error) {
	rt, _, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: provider, OllamaHost: ollamaHost})
	if err != nil {
		return nil, "", err
	}
	src, rows, err := openData(ctx)
	if err != nil {
		return nil, "", err
	}
	opt := chat.Options{
		Model:           selectModel(cfg, model),
		MaxTokens:       cfg.MaxTokens,
		Temperature:     cfg.Temperature,
		Greeting:        utils.ReadOptional(cfg.GreetingPath, ""),
		DataDescription: utils.ReadOptional(cfg.DataDescriptionPath, ""),
		Summary:         report.Build(src.Name(), rows, densityOptions()).Markdown(),
	}
	return chat.NewRegistry(rt, src, rows, opt), src.Name(), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server_addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "reload the data file when it changes")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "chat provider: openrouter|ollama (default from config)")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "chat model (default from config)")
}
