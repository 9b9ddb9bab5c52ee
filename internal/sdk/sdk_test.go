package sdk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"puter4image-web/internal/domain"
)

type stubCapability struct{ src string }

func (s stubCapability) TextToImage(context.Context, string, domain.Options) (*domain.ImageHandle, error) {
	return &domain.ImageHandle{Src: s.src}, nil
}

func TestRegistry_Preloaded(t *testing.T) {
	r := Preloaded(stubCapability{src: "u"})
	if _, ok := r.Lookup(); !ok {
		t.Fatal("Lookup() = false, want true for preloaded registry")
	}
	c, err := r.Load(context.Background())
	if err != nil || c == nil {
		t.Fatalf("Load() = %v, %v", c, err)
	}
}

func TestRegistry_LoadRunsFactoryOnce(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	r := NewRegistry(func(ctx context.Context) (Capability, error) {
		calls.Add(1)
		<-release
		return stubCapability{}, nil
	})

	if _, ok := r.Lookup(); ok {
		t.Fatal("Lookup() = true before load")
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Load(context.Background()); err != nil {
				t.Errorf("Load() error: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("factory calls = %d, want 1", got)
	}
	if _, ok := r.Lookup(); !ok {
		t.Error("Lookup() = false after load")
	}
}

func TestRegistry_FailedLoadIsRetried(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(func(ctx context.Context) (Capability, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("offline")
		}
		return stubCapability{}, nil
	})

	if _, err := r.Load(context.Background()); err == nil {
		t.Fatal("first Load() error = nil, want failure")
	}
	if _, ok := r.Lookup(); ok {
		t.Fatal("Lookup() = true after failed load")
	}
	if _, err := r.Load(context.Background()); err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
}

func TestRegistry_NilCapability(t *testing.T) {
	r := NewRegistry(func(ctx context.Context) (Capability, error) { return nil, nil })
	if _, err := r.Load(context.Background()); !errors.Is(err, ErrNilCapability) {
		t.Fatalf("Load() error = %v, want ErrNilCapability", err)
	}
}

func TestInject_CallsOnLoad(t *testing.T) {
	r := NewRegistry(func(ctx context.Context) (Capability, error) { return stubCapability{}, nil })

	loaded := make(chan Capability, 1)
	s := Inject(context.Background(), r, func(c Capability) { loaded <- c })

	select {
	case <-loaded:
	case <-time.After(time.Second):
		t.Fatal("onLoad was not called")
	}
	<-s.Done()
	if err := s.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	s.Remove()
}

func TestInject_RemoveCancelsPendingLoad(t *testing.T) {
	r := NewRegistry(func(ctx context.Context) (Capability, error) {
		time.Sleep(200 * time.Millisecond)
		return stubCapability{}, nil
	})

	var called atomic.Bool
	s := Inject(context.Background(), r, func(Capability) { called.Store(true) })
	s.Remove()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done() not closed after Remove")
	}
	if !errors.Is(s.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", s.Err())
	}
	if called.Load() {
		t.Error("onLoad called after Remove")
	}
}
