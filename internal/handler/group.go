package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/middleware"
)

type GroupHandler struct {
	svc *chat.Service
}

func NewGroupHandler(svc *chat.Service) *GroupHandler {
	return &GroupHandler{svc: svc}
}

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// CreateGroup: создатель становится админом группы.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := h.svc.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.MemberIDs)
	if err != nil {
		writeChatError(w, r, "CreateGroup", err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Group(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeChatError(w, r, "GetGroup", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}
