package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"puter4image-web/internal/form"
)

// HandleSubmit はフォーム送信を処理し、結果に関わらずトップページへリダイレクトします。
// 結果と通知はセッションのフォームに残り、次の表示で描画されます。
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		slog.Warn("フォームの解析に失敗しました", "error", err)
		http.Error(w, "リクエストの解析に失敗しました", http.StatusBadRequest)
		return
	}

	f, ok := h.resolveForm(w, r)
	if !ok {
		return
	}

	// 接続が切れても生成は一度だけ完了させ、結果をセッションのフォームに残す
	err := f.Submit(context.WithoutCancel(r.Context()), form.Input{
		Prompt: r.FormValue("prompt"),
		Model:  r.FormValue("model"),
		Token:  r.FormValue("token"),
	})
	if errors.Is(err, form.ErrBusy) {
		slog.InfoContext(r.Context(), "生成中のため送信を無視しました")
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleReset はセッションのフォームを破棄して初期状態に戻します。
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Reset(w, r); err != nil {
		slog.ErrorContext(r.Context(), "セッションのリセットに失敗しました", "error", err)
		http.Error(w, "セッションのリセットに失敗しました", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
