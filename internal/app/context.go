package app

import (
	"puter4image-web/internal/form"
)

// NewForm は Container の依存関係を注入したフォームを生成します。
// セッション毎、または CLI 実行毎に一つ生成されます。
func (c *Container) NewForm() *form.Form {
	deps := form.Deps{
		Env:          c.Registry,
		Loader:       c.Registry,
		DefaultModel: c.Config.DefaultModel,
	}
	if c.Slack != nil {
		deps.Notifier = c.Slack
	}
	if c.History != nil {
		deps.Recorder = c.History
	}
	return form.New(deps)
}
