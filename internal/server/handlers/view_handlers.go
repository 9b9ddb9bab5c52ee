package handlers

import (
	"net/http"

	"puter4image-web/internal/domain"
	"puter4image-web/internal/form"
)

// highlight はページ上部に並ぶ固定の紹介カードです。
type highlight struct {
	Title       string
	Description string
}

var highlights = []highlight{
	{Title: "Prompt obrigatório", Description: "Campo amplo para descrever exatamente a cena que quer ver."},
	{Title: "Modelos à vontade", Description: "Altere o modelo em tempo real sem tocar no código."},
	{Title: "Erro transparente", Description: "Qualquer falha aparece pura, para entender o que ocorreu."},
}

// indexViewData はテンプレート「index.html」に渡すためのデータ構造体
type indexViewData struct {
	Form         form.State
	Notices      []domain.Notice
	Highlights   []highlight
	DefaultModel string
	// AutoRefresh は SDK 読み込み中または生成中に画面を自動更新させます。
	AutoRefresh bool
}

// Index はページシェルとフォームを表示します。保留中の通知はここで消費されます。
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	f, ok := h.resolveForm(w, r)
	if !ok {
		return
	}

	state := f.State()
	w.Header().Set("Cache-Control", "no-store")
	h.render(w, http.StatusOK, "index.html", "Gerar imagens", indexViewData{
		Form:         state,
		Notices:      f.TakeNotices(),
		Highlights:   highlights,
		DefaultModel: h.cfg.DefaultModel,
		AutoRefresh:  !state.Ready || state.Loading,
	})
}

type statusResponse struct {
	Ready    bool       `json:"ready"`
	Loading  bool       `json:"loading"`
	Phase    form.Phase `json:"phase"`
	ImageURL string     `json:"image_url,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Status はセッションのフォーム状態を JSON で返します。
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	f, ok := h.resolveForm(w, r)
	if !ok {
		return
	}
	s := f.State()
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:    s.Ready,
		Loading:  s.Loading,
		Phase:    s.Phase,
		ImageURL: s.ImageURL,
		Error:    s.Error,
	})
}

// Healthz はプロセスの生存と SDK の読み込み状況を返します。
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	_, loaded := h.env.Lookup()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"sdk_loaded": loaded,
	})
}
