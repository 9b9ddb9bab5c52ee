package builder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"puter4image-web/internal/adapters"
	"puter4image-web/internal/app"
	"puter4image-web/internal/config"
	"puter4image-web/internal/generator"
	"puter4image-web/internal/sdk"
	"puter4image-web/internal/session"

	"github.com/samber/do"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// Setup は外部サービスとの接続を遅延生成するインジェクターを組み立てます。
// 依存関係は *app.Container を Invoke した時点で解決されます。
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*config.Config](injector, cfg)

	// 1. 基盤クライアントの初期化
	do.Provide[httpkit.ClientInterface](injector, func(i *do.Injector) (httpkit.ClientInterface, error) {
		return httpkit.New(config.DefaultHTTPTimeout), nil
	})

	// 2. I/O インフラ (GCS/S3/ローカル) の初期化
	do.Provide[*app.Storage](injector, func(i *do.Injector) (*app.Storage, error) {
		return buildStorage(ctx, do.MustInvoke[*config.Config](i))
	})

	// 3. 画像 SDK (初回のフォームマウント時に読み込まれる)
	do.Provide[*sdk.Registry](injector, func(i *do.Injector) (*sdk.Registry, error) {
		cfg := do.MustInvoke[*config.Config](i)
		st := do.MustInvoke[*app.Storage](i)
		keys := generator.Keys{Gemini: cfg.GeminiAPIKey, OpenAI: cfg.OpenAIAPIKey}
		return sdk.NewRegistry(generator.NewFactory(keys, st.Publisher)), nil
	})

	// 4. アダプターの初期化
	do.Provide[*adapters.SlackAdapter](injector, func(i *do.Injector) (*adapters.SlackAdapter, error) {
		slack, err := adapters.NewSlackAdapter(do.MustInvoke[httpkit.ClientInterface](i), cfg.SlackWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Slack adapter: %w", err)
		}
		return slack, nil
	})
	do.Provide[adapters.HistoryRecorder](injector, func(i *do.Injector) (adapters.HistoryRecorder, error) {
		if cfg.DatabaseURL == "" {
			return adapters.NopHistory{}, nil
		}
		history, err := adapters.NewPostgresHistory(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history store: %w", err)
		}
		return history, nil
	})

	// 5. コンテナの組み立て
	do.Provide[*app.Container](injector, func(i *do.Injector) (*app.Container, error) {
		storage, err := do.Invoke[*app.Storage](i)
		if err != nil {
			return nil, err
		}
		slack, err := do.Invoke[*adapters.SlackAdapter](i)
		if err != nil {
			return nil, err
		}
		history, err := do.Invoke[adapters.HistoryRecorder](i)
		if err != nil {
			return nil, err
		}

		c := &app.Container{
			Config:     cfg,
			Registry:   do.MustInvoke[*sdk.Registry](i),
			Storage:    storage,
			HTTPClient: do.MustInvoke[httpkit.ClientInterface](i),
			Slack:      slack,
			History:    history,
		}
		c.Sessions = session.NewManager(ctx, session.Options{
			Secret:       cfg.SessionSecret,
			SecureCookie: strings.HasPrefix(cfg.ServiceURL, "https://"),
			IdleTimeout:  cfg.SessionIdleTimeout,
		}, c.NewForm)
		return c, nil
	})

	return injector
}

// BuildContainer はインジェクターから Container を取り出します。
// 返された Container はインジェクターの Shutdown で解放されます。
func BuildContainer(ctx context.Context, cfg *config.Config) (*do.Injector, *app.Container, error) {
	injector := Setup(ctx, cfg)
	c, err := do.Invoke[*app.Container](injector)
	if err != nil {
		_ = injector.Shutdown()
		return nil, nil, fmt.Errorf("failed to build application container: %w", err)
	}
	return injector, c, nil
}
