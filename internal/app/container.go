package app

import (
	"log/slog"

	"puter4image-web/internal/adapters"
	"puter4image-web/internal/config"
	"puter4image-web/internal/sdk"
	"puter4image-web/internal/session"
	"puter4image-web/internal/storage"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// Container はアプリケーションの依存関係（DIコンテナ）を保持します。
type Container struct {
	Config *config.Config

	// Image SDK
	Registry *sdk.Registry

	// I/O and Storage
	Storage *Storage

	// Session
	Sessions *session.Manager

	// External Adapters
	HTTPClient httpkit.ClientInterface
	Slack      *adapters.SlackAdapter
	History    adapters.HistoryRecorder
}

// Storage は生成画像の公開先です。
type Storage struct {
	Publisher storage.Publisher
	// Local は IMAGE_STORE=local の場合のみ設定され、/images/ の配信に使われます。
	Local *storage.Local
	// IOFactory は IMAGE_STORE=gcs の場合のみ設定されます。
	IOFactory remoteio.IOFactory
}

// Close は、Container が保持するすべての外部接続リソースを安全に解放します。
func (c *Container) Close() {
	if c.Sessions != nil {
		c.Sessions.Close()
	}
	if c.Registry != nil {
		if err := c.Registry.Close(); err != nil {
			slog.Error("failed to close image SDK", "error", err)
		}
	}
	if c.Storage != nil && c.Storage.IOFactory != nil {
		if err := c.Storage.IOFactory.Close(); err != nil {
			slog.Error("failed to close IOFactory", "error", err)
		}
	}
	if c.History != nil {
		if err := c.History.Close(); err != nil {
			slog.Error("failed to close history store", "error", err)
		}
	}
}

// Shutdown は do.Shutdownable を満たし、インジェクターの終了時に Close を呼びます。
func (c *Container) Shutdown() error {
	c.Close()
	return nil
}
