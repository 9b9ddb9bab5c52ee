package form

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/sdk"
)

const testDefaultModel = "gemini-3-pro-image-preview"

// fakeCapability は呼び出し回数と最後のオプションを記録する SDK の代役です。
type fakeCapability struct {
	calls    atomic.Int32
	mu       sync.Mutex
	lastOpts domain.Options
	fn       func(ctx context.Context, prompt string) (*domain.ImageHandle, error)
}

func (c *fakeCapability) TextToImage(ctx context.Context, prompt string, opts domain.Options) (*domain.ImageHandle, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.lastOpts = opts
	c.mu.Unlock()
	return c.fn(ctx, prompt)
}

func succeedWith(src string) *fakeCapability {
	return &fakeCapability{fn: func(context.Context, string) (*domain.ImageHandle, error) {
		return &domain.ImageHandle{Src: src}, nil
	}}
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice domain.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

type recordingRecorder struct {
	mu   sync.Mutex
	gens []domain.Generation
}

func (r *recordingRecorder) Record(_ context.Context, g domain.Generation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens = append(r.gens, g)
	return nil
}

func newReadyForm(t *testing.T, c sdk.Capability) *Form {
	t.Helper()
	f := New(Deps{Env: sdk.Preloaded(c), DefaultModel: testDefaultModel})
	f.Mount(context.Background())
	t.Cleanup(f.Unmount)
	return f
}

func TestSubmit_WhitespacePromptIsRejected(t *testing.T) {
	for _, prompt := range []string{"", " ", "\t\n", "   \r\n  "} {
		t.Run("prompt="+prompt, func(t *testing.T) {
			c := succeedWith("u")
			f := newReadyForm(t, c)

			err := f.Submit(context.Background(), Input{Prompt: prompt})
			if !errors.Is(err, ErrEmptyPrompt) {
				t.Fatalf("Submit() error = %v, want ErrEmptyPrompt", err)
			}
			if got := c.calls.Load(); got != 0 {
				t.Errorf("external calls = %d, want 0", got)
			}
			s := f.State()
			if s.Error != msgPromptRequired || s.LastOutcome != domain.OutcomeRejected {
				t.Errorf("state = %+v", s)
			}
			if n := f.TakeNotices(); len(n) != 1 || n[0].Title != noticePromptMissing.Title {
				t.Errorf("notices = %+v", n)
			}
		})
	}
}

func TestSubmit_UnavailableCapability(t *testing.T) {
	f := New(Deps{Env: sdk.NewRegistry(nil), DefaultModel: testDefaultModel})
	f.Mount(context.Background())
	defer f.Unmount()

	err := f.Submit(context.Background(), Input{Prompt: "a cat"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Submit() error = %v, want ErrUnavailable", err)
	}
	s := f.State()
	if s.Error != msgUnavailable || s.Loading {
		t.Errorf("state = %+v", s)
	}
	if s.Ready {
		t.Error("Ready = true without a capability")
	}
}

func TestSubmit_ValidationPrecedesAvailability(t *testing.T) {
	f := New(Deps{Env: sdk.NewRegistry(nil)})
	if err := f.Submit(context.Background(), Input{Prompt: "  "}); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("Submit() error = %v, want ErrEmptyPrompt", err)
	}
}

func TestSubmit_Success(t *testing.T) {
	c := succeedWith("https://img.example/u.png")
	notifier := &recordingNotifier{}
	recorder := &recordingRecorder{}
	f := New(Deps{Env: sdk.Preloaded(c), DefaultModel: testDefaultModel, Notifier: notifier, Recorder: recorder})
	f.Mount(context.Background())
	defer f.Unmount()

	// 直前の失敗で残ったエラーが成功時に消えることも確認する
	_ = f.Submit(context.Background(), Input{Prompt: ""})

	if err := f.Submit(context.Background(), Input{Prompt: "a cat", Model: "gemini-2.5-flash-image"}); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	s := f.State()
	if s.ImageURL != "https://img.example/u.png" {
		t.Errorf("ImageURL = %q", s.ImageURL)
	}
	if s.Error != "" {
		t.Errorf("Error = %q, want cleared", s.Error)
	}
	if s.Loading || s.Phase != PhaseIdle || s.LastOutcome != domain.OutcomeSucceeded {
		t.Errorf("state = %+v", s)
	}
	if c.lastOpts.Model != "gemini-2.5-flash-image" {
		t.Errorf("model = %q", c.lastOpts.Model)
	}
	if s.Prompt != "a cat" {
		t.Errorf("Prompt = %q, want kept after submit", s.Prompt)
	}

	if len(notifier.notices) != 2 || notifier.notices[1].Title != noticeSucceeded.Title {
		t.Errorf("forwarded notices = %+v", notifier.notices)
	}
	if len(recorder.gens) != 1 || recorder.gens[0].Outcome != domain.OutcomeSucceeded {
		t.Errorf("recorded = %+v", recorder.gens)
	}
}

func TestSubmit_BlankModelFallsBackToDefault(t *testing.T) {
	c := succeedWith("u")
	f := newReadyForm(t, c)

	if err := f.Submit(context.Background(), Input{Prompt: "a cat", Model: "  "}); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if c.lastOpts.Model != testDefaultModel {
		t.Errorf("model = %q, want %q", c.lastOpts.Model, testDefaultModel)
	}
}

func TestSubmit_TokenIsKeptButNotForwarded(t *testing.T) {
	c := succeedWith("u")
	f := newReadyForm(t, c)

	if err := f.Submit(context.Background(), Input{Prompt: "a cat", Token: "secret"}); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if f.State().Token != "secret" {
		t.Errorf("Token = %q", f.State().Token)
	}
	if c.lastOpts != (domain.Options{Model: testDefaultModel}) {
		t.Errorf("options = %+v, want only model", c.lastOpts)
	}
}

type unserializable struct {
	Ch chan int
}

func TestSubmit_FailureNormalization(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, prompt string) (*domain.ImageHandle, error)
		want string
	}{
		{
			name: "panic with plain string",
			fn:   func(context.Context, string) (*domain.ImageHandle, error) { panic("boom") },
			want: "boom",
		},
		{
			name: "returned error",
			fn: func(context.Context, string) (*domain.ImageHandle, error) {
				return nil, errors.New("network down")
			},
			want: "network down",
		},
		{
			name: "panic with error",
			fn: func(context.Context, string) (*domain.ImageHandle, error) {
				panic(errors.New("network down"))
			},
			want: "network down",
		},
		{
			name: "panic with serializable value",
			fn: func(context.Context, string) (*domain.ImageHandle, error) {
				panic(map[string]int{"code": 429})
			},
			want: `{"code":429}`,
		},
		{
			name: "panic with non-serializable value",
			fn: func(context.Context, string) (*domain.ImageHandle, error) {
				panic(unserializable{Ch: make(chan int)})
			},
			want: fallbackErrorMessage,
		},
		{
			name: "nil handle",
			fn:   func(context.Context, string) (*domain.ImageHandle, error) { return nil, nil },
			want: errNoImage.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReadyForm(t, &fakeCapability{fn: tt.fn})

			err := f.Submit(context.Background(), Input{Prompt: "a cat"})
			var callErr *CallError
			if !errors.As(err, &callErr) {
				t.Fatalf("Submit() error = %v, want *CallError", err)
			}

			s := f.State()
			if s.Error != tt.want {
				t.Errorf("Error = %q, want %q", s.Error, tt.want)
			}
			if s.Loading {
				t.Error("Loading = true after failure")
			}
			if s.LastOutcome != domain.OutcomeFailed {
				t.Errorf("LastOutcome = %q", s.LastOutcome)
			}
			notices := f.TakeNotices()
			if len(notices) != 1 || notices[0].Title != noticeFailed.Title {
				t.Errorf("notices = %+v", notices)
			}
		})
	}
}

func TestSubmit_FailureKeepsPreviousImage(t *testing.T) {
	fail := false
	c := &fakeCapability{fn: func(context.Context, string) (*domain.ImageHandle, error) {
		if fail {
			return nil, errors.New("quota")
		}
		return &domain.ImageHandle{Src: "first"}, nil
	}}
	f := newReadyForm(t, c)

	if err := f.Submit(context.Background(), Input{Prompt: "a"}); err != nil {
		t.Fatalf("first Submit() error: %v", err)
	}
	fail = true
	_ = f.Submit(context.Background(), Input{Prompt: "b"})

	s := f.State()
	if s.ImageURL != "first" || s.Error != "quota" {
		t.Errorf("state = %+v", s)
	}
}

func TestSubmit_LoadingOnlyDuringCall(t *testing.T) {
	for _, failing := range []bool{false, true} {
		name := "success"
		if failing {
			name = "failure"
		}
		t.Run(name, func(t *testing.T) {
			entered := make(chan struct{})
			release := make(chan struct{})
			c := &fakeCapability{fn: func(context.Context, string) (*domain.ImageHandle, error) {
				close(entered)
				<-release
				if failing {
					return nil, errors.New("boom")
				}
				return &domain.ImageHandle{Src: "u"}, nil
			}}
			f := newReadyForm(t, c)

			if f.State().Loading {
				t.Fatal("Loading = true before submit")
			}

			done := make(chan error, 1)
			go func() { done <- f.Submit(context.Background(), Input{Prompt: "a cat"}) }()

			<-entered
			s := f.State()
			if !s.Loading || s.Phase != PhaseCalling || s.CanSubmit() {
				t.Errorf("state during call = %+v", s)
			}

			// 呼び出し中の二重送信は外部呼び出しを発生させない
			if err := f.Submit(context.Background(), Input{Prompt: "again"}); !errors.Is(err, ErrBusy) {
				t.Errorf("second Submit() error = %v, want ErrBusy", err)
			}
			if got := c.calls.Load(); got != 1 {
				t.Errorf("external calls = %d, want 1", got)
			}

			close(release)
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("Submit did not return")
			}

			s = f.State()
			if s.Loading || !s.CanSubmit() {
				t.Errorf("state after call = %+v", s)
			}
		})
	}
}

func TestMount_LoadsCapability(t *testing.T) {
	release := make(chan struct{})
	reg := sdk.NewRegistry(func(ctx context.Context) (sdk.Capability, error) {
		<-release
		return succeedWith("u"), nil
	})
	f := New(Deps{Env: reg, Loader: reg, DefaultModel: testDefaultModel})
	f.Mount(context.Background())
	defer f.Unmount()

	if s := f.State(); s.Ready || s.CanSubmit() || s.SubmitLabel() != "Carregando SDK..." {
		t.Fatalf("state before load = %+v", s)
	}

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady() error: %v", err)
	}
	if s := f.State(); !s.Ready || s.SubmitLabel() != "Gerar imagem" {
		t.Errorf("state after load = %+v", s)
	}
	if err := f.Submit(context.Background(), Input{Prompt: "a cat"}); err != nil {
		t.Errorf("Submit() error: %v", err)
	}
}

func TestUnmount_CancelsPendingLoad(t *testing.T) {
	release := make(chan struct{})
	reg := sdk.NewRegistry(func(ctx context.Context) (sdk.Capability, error) {
		<-release
		return succeedWith("u"), nil
	})
	f := New(Deps{Env: reg, Loader: reg})
	f.Mount(context.Background())
	f.Unmount()

	// 共有の読み込みはアンマウント後に完了させる
	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := reg.Load(ctx); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if f.State().Ready {
		t.Error("Ready = true after unmount cancelled the load")
	}
}

func TestUnmount_KeepsReadyFlag(t *testing.T) {
	f := newReadyForm(t, succeedWith("u"))
	f.Unmount()
	if !f.State().Ready {
		t.Error("Ready reverted to false after unmount")
	}
}

func TestTakeNotices_IsBounded(t *testing.T) {
	f := newReadyForm(t, succeedWith("u"))
	for i := 0; i < maxPendingNotices+3; i++ {
		_ = f.Submit(context.Background(), Input{})
	}
	if got := len(f.TakeNotices()); got != maxPendingNotices {
		t.Errorf("notices = %d, want %d", got, maxPendingNotices)
	}
	if got := len(f.TakeNotices()); got != 0 {
		t.Errorf("notices after drain = %d, want 0", got)
	}
}
