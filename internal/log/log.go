// Package log は JSON 形式の slog ロガーを構築します。
package log

import (
	"io"
	"log/slog"

	"github.com/samber/lo"
)

// New は w に JSON を出力するロガーを返します。
// dropTime が true の場合は time 属性を出力しません (Cloud Logging 等が時刻を付与する環境向け)。
func New(w io.Writer, dropTime bool) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return lo.Ternary(dropTime && len(groups) == 0 && a.Key == slog.TimeKey, slog.Attr{}, a)
		},
	}))
}
