package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/media"
)

// MediaHandler: загрузка вложения (multipart, поле "file") и его раздача.
type MediaHandler struct {
	store    *media.Store
	maxBytes int64
}

func NewMediaHandler(store *media.Store, maxBytes int64) *MediaHandler {
	return &MediaHandler{store: store, maxBytes: maxBytes}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	up, err := h.store.Save(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, media.ErrBlockedType), errors.Is(err, media.ErrBadContent):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Errorf("media upload %s: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.store.Open(chi.URLParam(r, "name"))
	if errors.Is(err, media.ErrNotFound) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if err != nil {
		logger.Errorf("media serve: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}
