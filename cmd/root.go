package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"puter4image-web/internal/config"
	"puter4image-web/internal/log"
	"puter4image-web/internal/server"

	"github.com/spf13/cobra"
)

// cfg はサブコマンド実行前に PersistentPreRun で読み込まれます。
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "puter4image-web",
	Short: "Prompt-to-image form served over HTTP",
	Long: `puter4image-web serves a small image generation form.
Without a subcommand it starts the web server; "generate" and "tui" drive the same form from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.LoadConfig()
		slog.SetDefault(log.New(os.Stdout, cfg.LogDropTime))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(cmd.Context(), cfg)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(cmd.Context(), cfg)
	},
}

// Execute はルートコマンドを実行します。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tuiCmd)
}
