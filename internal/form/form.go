// Package form は画像生成フォームのコンポーネントを実装します。
// 入力値・SDK 準備状態・読み込み中フラグ・直近の画像 URL とエラーを保持し、
// 送信時に注入されたケイパビリティを一度だけ呼び出します。
package form

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/sdk"

	"github.com/samber/lo"
)

var errNoImage = errors.New("image SDK returned no image")

// Notifier はトースト通知を外部 (Slack 等) へ転送します。
type Notifier interface {
	Notify(ctx context.Context, n domain.Notice) error
}

// Recorder は確定した生成結果を記録します。
type Recorder interface {
	Record(ctx context.Context, g domain.Generation) error
}

// Deps はフォームに注入される依存関係です。
type Deps struct {
	// Env は SDK が既に存在するかを判定します (送信時にも参照されます)。
	Env sdk.Environment
	// Loader はマウント時に SDK を読み込みます。nil の場合は読み込みを行いません。
	Loader       sdk.Loader
	DefaultModel string
	Notifier     Notifier
	Recorder     Recorder
	Now          func() time.Time
}

// Form は画像生成フォームです。メソッドは並行に呼び出しても安全です。
type Form struct {
	deps Deps

	mu      sync.Mutex
	state   State
	notices []domain.Notice
	mounted bool
	script  *sdk.Script

	ready     chan struct{}
	readyOnce sync.Once
}

// New はモデル欄に既定モデルを入れた状態のフォームを返します。
func New(deps Deps) *Form {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Form{
		deps: deps,
		state: State{
			Model: deps.DefaultModel,
			Phase: PhaseIdle,
		},
		ready: make(chan struct{}),
	}
}

// Mount は SDK が既に存在すれば即座に準備完了とし、無ければ読み込みを開始します。
// 読み込みは ctx のライフタイムに従い、Unmount で取り消されます。
func (f *Form) Mount(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mounted {
		return
	}
	f.mounted = true

	if _, ok := f.deps.Env.Lookup(); ok {
		f.markReadyLocked()
		return
	}
	if f.deps.Loader == nil {
		return
	}

	f.script = sdk.Inject(ctx, f.deps.Loader, func(sdk.Capability) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.markReadyLocked()
	})
}

// Unmount はマウント時に開始した読み込みを解放します。準備完了フラグは戻しません。
func (f *Form) Unmount() {
	f.mu.Lock()
	s := f.script
	f.script = nil
	f.mounted = false
	f.mu.Unlock()

	if s != nil {
		s.Remove()
	}
}

// WaitReady は SDK の準備完了か ctx の終了まで待機します。
func (f *Form) WaitReady(ctx context.Context) error {
	select {
	case <-f.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State は現在の状態のコピーを返します。
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// TakeNotices は未表示のトースト通知を取り出します。通知は一度しか返りません。
func (f *Form) TakeNotices() []domain.Notice {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.notices
	f.notices = nil
	return n
}

// Submit はプロンプトを検証し、SDK を呼び出して結果を状態に反映します。
// 戻り値は ErrEmptyPrompt, ErrUnavailable, ErrBusy, *CallError のいずれか、または nil です。
// どの経路でも戻った時点で Loading は false です。
func (f *Form) Submit(ctx context.Context, in Input) error {
	f.mu.Lock()
	if f.state.Loading {
		f.mu.Unlock()
		return ErrBusy
	}

	f.state.Prompt = in.Prompt
	f.state.Model = in.Model
	f.state.Token = in.Token
	f.state.Phase = PhaseValidating

	if strings.TrimSpace(in.Prompt) == "" {
		f.rejectLocked(msgPromptRequired, noticePromptMissing)
		f.mu.Unlock()
		f.forward(ctx, noticePromptMissing)
		return ErrEmptyPrompt
	}

	capability, ok := f.deps.Env.Lookup()
	if !ok {
		f.rejectLocked(msgUnavailable, noticeUnavailable)
		f.mu.Unlock()
		f.forward(ctx, noticeUnavailable)
		return ErrUnavailable
	}

	f.state.Loading = true
	f.state.Error = ""
	f.state.Phase = PhaseCalling
	f.mu.Unlock()

	model := strings.TrimSpace(in.Model)
	model = lo.Ternary(model != "", model, f.deps.DefaultModel)
	started := f.deps.Now()

	handle, callErr := invoke(ctx, capability, in.Prompt, domain.Options{Model: model})

	gen := domain.Generation{
		Prompt:     in.Prompt,
		Model:      model,
		StartedAt:  started,
		FinishedAt: f.deps.Now(),
	}
	var notice domain.Notice

	f.mu.Lock()
	f.state.Loading = false
	f.state.Phase = PhaseIdle
	if callErr != nil {
		f.state.Error = callErr.Message
		f.state.LastOutcome = domain.OutcomeFailed
		gen.Outcome, gen.Error = domain.OutcomeFailed, callErr.Message
		notice = noticeFailed
		notice.Detail = callErr.Message
	} else {
		f.state.ImageURL = handle.Src
		f.state.LastOutcome = domain.OutcomeSucceeded
		gen.Outcome, gen.ImageURL = domain.OutcomeSucceeded, handle.Src
		notice = noticeSucceeded
		notice.ImageURL = handle.Src
	}
	notice.Model = model
	f.pushNoticeLocked(notice)
	f.mu.Unlock()

	slog.InfoContext(ctx, "Image generation finished",
		"outcome", gen.Outcome,
		"model", model,
		"prompt_len", len(in.Prompt),
		"elapsed", gen.FinishedAt.Sub(gen.StartedAt),
	)
	f.forward(ctx, notice)
	f.record(ctx, gen)

	if callErr != nil {
		return callErr
	}
	return nil
}

// invoke はケイパビリティを呼び出し、返されたエラーや panic を CallError に正規化します。
func invoke(ctx context.Context, c sdk.Capability, prompt string, opts domain.Options) (handle *domain.ImageHandle, callErr *CallError) {
	defer func() {
		if r := recover(); r != nil {
			handle = nil
			callErr = &CallError{Message: DescribeError(r), Value: r}
		}
	}()

	h, err := c.TextToImage(ctx, prompt, opts)
	if err != nil {
		return nil, &CallError{Message: DescribeError(err), Value: err}
	}
	if h == nil {
		return nil, &CallError{Message: DescribeError(errNoImage), Value: errNoImage}
	}
	return h, nil
}

func (f *Form) markReadyLocked() {
	f.state.Ready = true
	f.readyOnce.Do(func() { close(f.ready) })
}

func (f *Form) rejectLocked(msg string, n domain.Notice) {
	f.state.Error = msg
	f.state.Phase = PhaseIdle
	f.state.LastOutcome = domain.OutcomeRejected
	f.pushNoticeLocked(n)
}

func (f *Form) pushNoticeLocked(n domain.Notice) {
	f.notices = append(f.notices, n)
	if len(f.notices) > maxPendingNotices {
		f.notices = f.notices[len(f.notices)-maxPendingNotices:]
	}
}

func (f *Form) forward(ctx context.Context, n domain.Notice) {
	if f.deps.Notifier == nil {
		return
	}
	if err := f.deps.Notifier.Notify(ctx, n); err != nil {
		slog.ErrorContext(ctx, "Notification failed", "error", err)
	}
}

func (f *Form) record(ctx context.Context, g domain.Generation) {
	if f.deps.Recorder == nil {
		return
	}
	if err := f.deps.Recorder.Record(ctx, g); err != nil {
		slog.ErrorContext(ctx, "Failed to record generation", "error", err)
	}
}
