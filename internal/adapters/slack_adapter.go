package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"puter4image-web/internal/domain"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-notifier/pkg/factory"
)

// slackSender は go-notifier の Slack クライアントのうち、本アダプターが使う部分です。
type slackSender interface {
	SendTextWithHeader(ctx context.Context, header, text string) error
}

// SlackAdapter はフォームのトースト通知を Slack へ転送します。
type SlackAdapter struct {
	webhookURL  string
	slackClient slackSender
}

// NewSlackAdapter は webhookURL が空の場合、送信を行わないアダプターを返します。
func NewSlackAdapter(httpClient httpkit.ClientInterface, webhookURL string) (*SlackAdapter, error) {
	if webhookURL == "" {
		return &SlackAdapter{webhookURL: webhookURL}, nil
	}
	client, err := factory.GetSlackClient(httpClient)
	if err != nil {
		return nil, fmt.Errorf("Slackクライアントの初期化に失敗しました: %w", err)
	}

	return &SlackAdapter{
		webhookURL:  webhookURL,
		slackClient: client,
	}, nil
}

// Notify は通知の重要度に応じたアイコン付きで Slack に投稿します。
func (a *SlackAdapter) Notify(ctx context.Context, n domain.Notice) error {
	if a.slackClient == nil {
		slog.DebugContext(ctx, "Slackクライアントが初期化されていないため、通知をスキップします。", "title", n.Title)
		return nil
	}

	title := fmt.Sprintf("%s %s", iconFor(n.Level), n.Title)
	if err := a.slackClient.SendTextWithHeader(ctx, title, buildSlackContent(n)); err != nil {
		return fmt.Errorf("Slackへの投稿に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "Slack に通知を送信しました。", "level", n.Level)
	return nil
}

func iconFor(level domain.NoticeLevel) string {
	switch level {
	case domain.NoticeSuccess:
		return "🎨"
	case domain.NoticeError:
		return "❌"
	default:
		return "ℹ️"
	}
}

// buildSlackContent は通知本文を mrkdwn 形式で組み立てます。
func buildSlackContent(n domain.Notice) string {
	var sb strings.Builder
	sb.WriteString(n.Description)
	sb.WriteString("\n")

	if n.Model != "" {
		sb.WriteString(fmt.Sprintf("*Modelo:* `%s`\n", n.Model))
	}
	// data: URL は巨大になるため投稿しない
	if n.ImageURL != "" && !strings.HasPrefix(n.ImageURL, "data:") {
		sb.WriteString(fmt.Sprintf("🌐 *Imagem:* <%s|abrir>\n", n.ImageURL))
	}
	if n.Detail != "" {
		sb.WriteString(fmt.Sprintf("```\n%s\n```\n", n.Detail))
	}

	return sb.String()
}
