package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lingochat/internal/chat"
)

type BlockHandler struct {
	svc *chat.Service
}

func NewBlockHandler(svc *chat.Service) *BlockHandler {
	return &BlockHandler{svc: svc}
}

func (h *BlockHandler) GetBlocked(w http.ResponseWriter, r *http.Request) {
	ids, err := manager(h.svc, r).ListBlocked(r.Context())
	if err != nil {
		writeChatError(w, r, "GetBlocked", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *BlockHandler) Block(w http.ResponseWriter, r *http.Request) {
	if err := manager(h.svc, r).Block(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeChatError(w, r, "Block", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlockHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	if err := manager(h.svc, r).Unblock(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeChatError(w, r, "Unblock", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
