package domain

import "time"

// Options は TextToImage 呼び出しに渡すオプション構造体です。
// Model は常に設定されます (空欄時は既定モデル)。
type Options struct {
	Model string `json:"model"`
}

// ImageHandle は外部 SDK が返す画像ハンドルです。Src が表示用のソース URL です。
type ImageHandle struct {
	Src      string `json:"src"`
	MimeType string `json:"mime_type,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Outcome は一回の送信の終端状態です。
type Outcome string

const (
	OutcomeRejected  Outcome = "rejected"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Generation は履歴として記録される一回の生成結果です。
type Generation struct {
	Prompt     string
	Model      string
	Outcome    Outcome
	ImageURL   string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
