package sdk

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Registry はプロセス内で共有されるケイパビリティの置き場です。
// Environment と Loader の両方を満たし、初期化は同時に何度要求されても一度しか走りません。
type Registry struct {
	factory Factory

	mu      sync.Mutex
	current Capability
	pending *loadCall
}

type loadCall struct {
	done chan struct{}
	cap  Capability
	err  error
}

// NewRegistry は factory で遅延初期化される Registry を返します。
func NewRegistry(factory Factory) *Registry {
	return &Registry{factory: factory}
}

// Preloaded は既にケイパビリティが存在する Registry を返します。
func Preloaded(c Capability) *Registry {
	return &Registry{current: c}
}

// Lookup はケイパビリティが読み込み済みであればそれを返します。
func (r *Registry) Lookup() (Capability, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.current != nil
}

// Load はケイパビリティを読み込みます。読み込み済みなら即座に返します。
// 呼び出し元の ctx がキャンセルされても進行中の初期化自体は継続し、他の待機者に結果を渡します。
// 失敗した初期化は記憶されず、次の Load で再試行されます。
func (r *Registry) Load(ctx context.Context) (Capability, error) {
	r.mu.Lock()
	if r.current != nil {
		c := r.current
		r.mu.Unlock()
		return c, nil
	}
	if r.factory == nil {
		r.mu.Unlock()
		return nil, ErrNilCapability
	}
	call := r.pending
	if call == nil {
		call = &loadCall{done: make(chan struct{})}
		r.pending = call
		go r.run(context.WithoutCancel(ctx), call)
	}
	r.mu.Unlock()

	select {
	case <-call.done:
		return call.cap, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) run(ctx context.Context, call *loadCall) {
	c, err := r.factory(ctx)
	if err == nil && c == nil {
		err = ErrNilCapability
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to load image SDK", "error", err)
		c = nil
	}

	r.mu.Lock()
	if err == nil {
		r.current = c
	}
	r.pending = nil
	r.mu.Unlock()

	call.cap, call.err = c, err
	close(call.done)
}

// Close は読み込み済みのケイパビリティが io.Closer であれば解放します。
func (r *Registry) Close() error {
	r.mu.Lock()
	c := r.current
	r.current = nil
	r.mu.Unlock()

	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
