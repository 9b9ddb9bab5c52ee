package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"puter4image-web/internal/config"
	"puter4image-web/internal/domain"
	"puter4image-web/internal/form"
	"puter4image-web/internal/sdk"
	"puter4image-web/internal/storage"
)

const titleSuffix = " - Puter4imageLLMs"

// FormSessions はリクエストに紐づくフォームを解決します。
type FormSessions interface {
	Form(w http.ResponseWriter, r *http.Request) (*form.Form, error)
	Reset(w http.ResponseWriter, r *http.Request) error
}

type Handler struct {
	cfg           *config.Config
	templateCache map[string]*template.Template
	sessions      FormSessions
	env           sdk.Environment
	local         *storage.Local

	apiReadyTimeout time.Duration
}

// NewHandler は指定された構成に基づいて新しいハンドラーを初期化します。
// テンプレートをコンパイルし、レイアウトファイルが存在することを確認します。
// local は IMAGE_STORE=local 以外では nil で構いません。
func NewHandler(
	cfg *config.Config,
	sessions FormSessions,
	env sdk.Environment,
	local *storage.Local,
) (*Handler, error) {
	cache := make(map[string]*template.Template)
	layoutPath := filepath.Join(cfg.TemplateDir, "layout.html")
	if _, err := os.Stat(layoutPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("レイアウトテンプレートが見つかりません: %s", layoutPath)
	}

	pagePaths, err := filepath.Glob(filepath.Join(cfg.TemplateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("ページテンプレートの検索に失敗しました: %w", err)
	}

	funcMap := template.FuncMap{
		"noticeClass":  func(level domain.NoticeLevel) string { return "notice-" + string(level) },
		"safeImageURL": safeImageURL,
	}

	for _, pagePath := range pagePaths {
		pageName := filepath.Base(pagePath)
		if pageName == "layout.html" {
			continue
		}

		tmpl := template.New(pageName).Funcs(funcMap)
		tmpl, err = tmpl.ParseFiles(layoutPath, pagePath)
		if err != nil {
			return nil, fmt.Errorf("テンプレート %s の解析に失敗しました: %w", pageName, err)
		}
		cache[pageName] = tmpl
	}

	return &Handler{
		cfg:           cfg,
		templateCache: cache,
		sessions:      sessions,
		env:           env,
		local:         local,

		apiReadyTimeout: defaultAPIReadyTimeout,
	}, nil
}

// safeImageURL は画像として表示してよい URL だけを template.URL として通します。
// html/template は data: URL を既定で無害化するため、インラインストアの画像にはこの変換が必要です。
func safeImageURL(u string) template.URL {
	switch {
	case strings.HasPrefix(u, "data:image/"),
		strings.HasPrefix(u, "https://"),
		strings.HasPrefix(u, "http://"),
		strings.HasPrefix(u, "/"):
		return template.URL(u)
	}
	return template.URL("#")
}
