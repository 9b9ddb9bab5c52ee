// Package session はブラウザごとのフォームインスタンスを管理します。
// Cookie にはフォーム ID だけを保存し、フォーム本体はアイドルタイムアウト付きのメモリキャッシュに保持します。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"puter4image-web/internal/form"

	"github.com/gorilla/sessions"
	"github.com/patrickmn/go-cache"
)

const (
	sessionName = "puter4image-session"
	formIDKey   = "form_id"
)

// Options はセッション管理の設定です。
type Options struct {
	Secret       string
	SecureCookie bool
	IdleTimeout  time.Duration
}

// Manager はセッション Cookie とフォームインスタンスを対応付けます。
// フォームはキャッシュから外れた時点でアンマウントされます。
type Manager struct {
	store   *sessions.CookieStore
	forms   *cache.Cache
	newForm func() *form.Form
	// mountCtx は SDK 読み込みの親コンテキストです。リクエストより長く生存します。
	mountCtx context.Context

	mu sync.Mutex
}

// NewManager は Manager を生成します。newForm はセッション毎に一度呼ばれます。
func NewManager(ctx context.Context, opts Options, newForm func() *form.Form) *Manager {
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.IdleTimeout.Seconds()),
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	forms := cache.New(opts.IdleTimeout, opts.IdleTimeout/2)
	forms.OnEvicted(func(id string, v any) {
		if f, ok := v.(*form.Form); ok {
			f.Unmount()
			slog.Debug("Form unmounted", "form_id", id)
		}
	})

	return &Manager{
		store:    store,
		forms:    forms,
		newForm:  newForm,
		mountCtx: ctx,
	}
}

// Form はリクエストのセッションに紐づくフォームを返します。
// 未作成または期限切れの場合は新しくマウントし、Cookie を発行します。
func (m *Manager) Form(w http.ResponseWriter, r *http.Request) (*form.Form, error) {
	sess, err := m.store.Get(r, sessionName)
	if err != nil {
		// 鍵の変更などで復号できない Cookie は新規セッションとして扱う
		slog.WarnContext(r.Context(), "セッション Cookie を復号できないため再発行します", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := sess.Values[formIDKey].(string); ok && id != "" {
		if v, found := m.forms.Get(id); found {
			f := v.(*form.Form)
			m.forms.SetDefault(id, f)
			return f, nil
		}
		// 期限切れで残っている項目があればアンマウントさせる
		m.forms.Delete(id)
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	f := m.newForm()
	f.Mount(m.mountCtx)
	m.forms.SetDefault(id, f)

	sess.Values[formIDKey] = id
	if err := sess.Save(r, w); err != nil {
		m.forms.Delete(id)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return f, nil
}

// Reset はセッションのフォームを破棄します。次の Form 呼び出しで新しいフォームが作られます。
func (m *Manager) Reset(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, sessionName)

	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := sess.Values[formIDKey].(string); ok {
		m.forms.Delete(id)
	}
	delete(sess.Values, formIDKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Len は保持しているフォーム数を返します。
func (m *Manager) Len() int {
	return m.forms.ItemCount()
}

// Close はすべてのフォームをアンマウントします。
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Flush は OnEvicted を呼ばないため一件ずつ削除する
	m.forms.DeleteExpired()
	for id := range m.forms.Items() {
		m.forms.Delete(id)
	}
}

func newID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate form id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
