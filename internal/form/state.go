package form

import "puter4image-web/internal/domain"

// Phase は送信処理の現在位置です。一回の送信は必ず PhaseIdle に戻ります。
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseCalling    Phase = "calling"
)

// Input はフォームから送信される値です。
type Input struct {
	Prompt string
	Model  string
	// Token は入力欄として保持されるだけで、どの処理からも参照されません。
	Token string
}

// State はフォームが保持する UI 状態のスナップショットです。
type State struct {
	Prompt string
	Model  string
	Token  string

	Ready   bool
	Loading bool

	ImageURL string
	Error    string

	Phase       Phase
	LastOutcome domain.Outcome
}

// CanSubmit は送信ボタンが有効かどうかを返します。
func (s State) CanSubmit() bool {
	return s.Ready && !s.Loading
}

// SubmitLabel は送信ボタンの表示文言です。
func (s State) SubmitLabel() string {
	switch {
	case !s.Ready:
		return "Carregando SDK..."
	case s.Loading:
		return "Gerando..."
	default:
		return "Gerar imagem"
	}
}
