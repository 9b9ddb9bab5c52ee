package sdk

import (
	"context"
	"log/slog"
	"sync"
)

// Script はマウント中のコンポーネントが保持する、スコープ付きの非同期読み込みです。
// Remove されるまでに読み込みが完了すれば onLoad が一度だけ呼ばれます。
type Script struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	removed bool
	err     error
}

// Inject は loader による読み込みを開始し、その参照を返します。
// onLoad の中から Remove を呼んではいけません。
func Inject(ctx context.Context, loader Loader, onLoad func(Capability)) *Script {
	ctx, cancel := context.WithCancel(ctx)
	s := &Script{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)

		c, err := loader.Load(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.err = err
			if !s.removed {
				slog.WarnContext(ctx, "Image SDK script failed to load", "error", err)
			}
			return
		}
		if s.removed {
			return
		}
		onLoad(c)
	}()

	return s
}

// Done は読み込みが確定 (成功・失敗・取り消し) すると閉じられます。
func (s *Script) Done() <-chan struct{} {
	return s.done
}

// Err は確定後の読み込みエラーを返します。
func (s *Script) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Remove は進行中の読み込みを取り消し、ゴルーチンの終了を待ちます。
// 戻った後に onLoad が呼ばれることはありません。
func (s *Script) Remove() {
	s.mu.Lock()
	s.removed = true
	s.mu.Unlock()

	s.cancel()
	<-s.done
}
