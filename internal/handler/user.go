package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/model"
)

type UserHandler struct {
	svc *chat.Service
}

func NewUserHandler(svc *chat.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUser: регистрация; идентификация не требуется.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req chat.NewUser
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		writeChatError(w, r, "CreateUser", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		writeChatError(w, r, "GetUsers", err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.User(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeChatError(w, r, "GetUser", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := manager(h.svc, r).Profile(r.Context())
	if err != nil {
		writeChatError(w, r, "GetProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req chat.ProfileUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := manager(h.svc, r).UpdateProfile(r.Context(), req)
	if err != nil {
		writeChatError(w, r, "UpdateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
