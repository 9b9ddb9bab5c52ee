package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"puter4image-web/internal/builder"
	"puter4image-web/internal/config"
	"puter4image-web/internal/form"
	"puter4image-web/internal/tui"

	"github.com/spf13/cobra"
)

var (
	genPrompt       string
	genModel        string
	genToken        string
	genOutput       string
	genReadyTimeout time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a single image and print its URL",
	Example: `  puter4image-web generate --prompt "a cat astronaut"
  puter4image-web generate --prompt "a cat" --model dall-e-3 --out cat.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd.Context())
	},
}

func init() {
	generateCmd.Flags().StringVarP(&genPrompt, "prompt", "p", "", "prompt describing the image")
	generateCmd.Flags().StringVarP(&genModel, "model", "m", "", "image model (defaults to DEFAULT_IMAGE_MODEL)")
	generateCmd.Flags().StringVar(&genToken, "token", "", "optional token (currently unused)")
	generateCmd.Flags().StringVarP(&genOutput, "out", "o", "", "write the image to this file when it is returned inline")
	generateCmd.Flags().DurationVar(&genReadyTimeout, "ready-timeout", 30*time.Second, "how long to wait for the image SDK to load")
}

func runGenerate(ctx context.Context) error {
	if err := config.ValidateGeneratorConfig(cfg); err != nil {
		return err
	}

	injector, c, err := builder.BuildContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = injector.Shutdown() }()

	f := c.NewForm()
	f.Mount(ctx)
	defer f.Unmount()

	waitCtx, cancel := context.WithTimeout(ctx, genReadyTimeout)
	defer cancel()
	if err := f.WaitReady(waitCtx); err != nil {
		fmt.Fprintln(os.Stderr, tui.HintStyle().Render("O SDK não carregou a tempo."))
	}

	submitErr := f.Submit(ctx, form.Input{Prompt: genPrompt, Model: genModel, Token: genToken})
	state := f.State()
	for _, n := range f.TakeNotices() {
		fmt.Fprintln(os.Stderr, tui.NoticeStyle(n.Level).Render(n.Title)+" "+tui.HintStyle().Render(n.Description))
	}
	if submitErr != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle().Render(state.Error))
		return fmt.Errorf("image generation failed: %w", submitErr)
	}

	if genOutput != "" && strings.HasPrefix(state.ImageURL, "data:") {
		if err := writeDataURL(genOutput, state.ImageURL); err != nil {
			return err
		}
		fmt.Println(tui.ImageStyle().Render(genOutput))
		return nil
	}
	fmt.Println(state.ImageURL)
	return nil
}

// writeDataURL は base64 の data: URL をデコードしてファイルに書き出します。
func writeDataURL(path, dataURL string) error {
	_, encoded, ok := strings.Cut(dataURL, ";base64,")
	if !ok {
		return fmt.Errorf("unsupported data URL")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
