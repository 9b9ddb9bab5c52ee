package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ServeImage はローカルストアに保存された生成画像を配信します。
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	if h.local == nil {
		http.NotFound(w, r)
		return
	}

	name := chi.URLParam(r, "name")
	p, err := h.local.Path(name)
	if err != nil {
		slog.WarnContext(r.Context(), "画像のリクエストパスが不正です", "name", name, "error", err)
		http.Error(w, "不正な画像名です", http.StatusBadRequest)
		return
	}

	// ファイル名は内容と時刻から一意に決まるため長期キャッシュできる
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, p)
}
