package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"puter4image-web/internal/builder"
	"puter4image-web/internal/config"
	"puter4image-web/internal/log"
	"puter4image-web/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the image generation form in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ValidateGeneratorConfig(cfg); err != nil {
			return err
		}
		// 画面を崩さないよう TUI 実行中はログを捨てる
		slog.SetDefault(log.New(io.Discard, true))

		ctx := cmd.Context()
		injector, c, err := builder.BuildContainer(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = injector.Shutdown() }()

		f := c.NewForm()
		f.Mount(ctx)
		defer f.Unmount()

		if _, err := tea.NewProgram(tui.New(ctx, f), tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("terminal UI error: %w", err)
		}
		return nil
	},
}
