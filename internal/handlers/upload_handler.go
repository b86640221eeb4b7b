package handlers

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/gov-dx-sandbox/team-roster/internal/uploads"
)

// UploadHandler serves stored profile images
type UploadHandler struct {
	store  *uploads.Store
	errors errorResponder
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(store *uploads.Store, exposeDetail bool) *UploadHandler {
	return &UploadHandler{store: store, errors: errorResponder{exposeDetail: exposeDetail}}
}

// ServeUpload handles GET /api/uploads/{filename}
func (h *UploadHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	f, info, err := h.store.Open(filename)
	if err != nil {
		h.errors.respond(w, err)
		return
	}
	defer f.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
