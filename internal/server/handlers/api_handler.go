package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/form"
)

// defaultAPIReadyTimeout は新しいセッションで SDK の読み込みを待つ上限です。
// 超過した場合は通常どおり 503 を返します。
const defaultAPIReadyTimeout = 10 * time.Second

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Token  string `json:"token"`
}

type generateResponse struct {
	ImageURL string          `json:"image_url,omitempty"`
	Error    string          `json:"error,omitempty"`
	Notices  []domain.Notice `json:"notices,omitempty"`
}

// APIGenerate は JSON でプロンプトを受け取り、一回の生成結果を返します。
func (h *Handler) APIGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	f, ok := h.resolveForm(w, r)
	if !ok {
		return
	}

	waitCtx, cancel := context.WithTimeout(r.Context(), h.apiReadyTimeout)
	if err := f.WaitReady(waitCtx); err != nil {
		slog.WarnContext(r.Context(), "SDK の読み込みを待機中にタイムアウトしました", "error", err)
	}
	cancel()

	err := f.Submit(context.WithoutCancel(r.Context()), form.Input{Prompt: req.Prompt, Model: req.Model, Token: req.Token})
	state := f.State()
	resp := generateResponse{Notices: f.TakeNotices()}

	var callErr *form.CallError
	switch {
	case err == nil:
		resp.ImageURL = state.ImageURL
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, form.ErrEmptyPrompt):
		resp.Error = state.Error
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, form.ErrUnavailable):
		resp.Error = state.Error
		writeJSON(w, http.StatusServiceUnavailable, resp)
	case errors.Is(err, form.ErrBusy):
		resp.Error = err.Error()
		writeJSON(w, http.StatusConflict, resp)
	case errors.As(err, &callErr):
		resp.Error = callErr.Message
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		resp.Error = err.Error()
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}
