package builder

import (
	"fmt"

	"puter4image-web/internal/app"
	"puter4image-web/internal/server/handlers"
)

// BuildHandlers は Container から Web UI 用ハンドラーを組み立てます。
// server パッケージはこのハンドラーを受け取ってルーティングを行います。
func BuildHandlers(c *app.Container) (*handlers.Handler, error) {
	if c.Config.ServiceURL == "" {
		return nil, fmt.Errorf("画像 URL の構築のために ServiceURL の設定が必要です")
	}

	webHandler, err := handlers.NewHandler(c.Config, c.Sessions, c.Registry, c.Storage.Local)
	if err != nil {
		return nil, fmt.Errorf("WebHandlerの初期化に失敗しました: %w", err)
	}
	return webHandler, nil
}
