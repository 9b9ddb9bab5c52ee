package domain

// NoticeLevel は通知の重要度です。
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice はフォームが一時的に表示するトースト通知です。
// 次の描画で一度だけ表示され、Slack 等の通知コンポーネントにも共有されます。
type Notice struct {
	Level       NoticeLevel `json:"level"`
	Title       string      `json:"title"`
	Description string      `json:"description"`

	// 以下は Slack 等へ転送する際の補足情報です。画面には表示しません。
	Model    string `json:"model,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}
