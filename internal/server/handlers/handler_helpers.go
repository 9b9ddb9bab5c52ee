package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"puter4image-web/internal/form"
)

// maxRequestBody はフォームと JSON リクエストの上限サイズです。
const maxRequestBody = 1 << 20

// render は HTML テンプレートをレンダリングし、レスポンスを書き込みます。
func (h *Handler) render(w http.ResponseWriter, status int, pageName string, title string, data any) {
	tmpl, ok := h.templateCache[pageName]
	if !ok {
		slog.Error("キャッシュ内にテンプレートが見つかりません", "page", pageName)
		http.Error(w, "システムエラーが発生しました（テンプレート未定義）", http.StatusInternalServerError)
		return
	}

	renderData := struct {
		Title string
		Data  any
	}{
		Title: title + titleSuffix,
		Data:  data,
	}

	var buf bytes.Buffer
	// レイアウトファイルをベースに実行します
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", renderData); err != nil {
		slog.Error("テンプレートのレンダリングに失敗しました", "page", pageName, "error", err)
		http.Error(w, "画面の表示中にエラーが発生しました", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("レスポンスの書き込みに失敗しました", "error", err)
	}
}

// writeJSON は v を JSON としてレスポンスに書き込みます。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("JSON レスポンスの書き込みに失敗しました", "error", err)
	}
}

// resolveForm はセッションのフォームを取得し、失敗時は 500 を返します。
func (h *Handler) resolveForm(w http.ResponseWriter, r *http.Request) (*form.Form, bool) {
	f, err := h.sessions.Form(w, r)
	if err != nil {
		slog.ErrorContext(r.Context(), "セッションの取得に失敗しました", "error", err)
		http.Error(w, "セッションの取得に失敗しました", http.StatusInternalServerError)
		return nil, false
	}
	return f, true
}
