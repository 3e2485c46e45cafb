package handler

import (
	"net/http"

	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/model"
)

// ConversationHandler: список чатов владельца и операции над строкой чата.
type ConversationHandler struct {
	svc *chat.Service
}

func NewConversationHandler(svc *chat.Service) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// GetConversations понимает ?archived=true (только архив) и ?category=work (фильтр по категории).
func (h *ConversationHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	f := chat.ConversationFilter{
		Archived: queryBool(r, "archived"),
		Category: model.Category(r.URL.Query().Get("category")),
	}
	if !f.Category.Valid() {
		writeChatError(w, r, "GetConversations", chat.ErrInvalidCategory)
		return
	}
	rows, err := manager(h.svc, r).ListConversations(r.Context(), f)
	if err != nil {
		writeChatError(w, r, "GetConversations", err)
		return
	}
	if rows == nil {
		rows = []model.Conversation{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *ConversationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	conv, err := manager(h.svc, r).MarkAsRead(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "MarkAsRead", err)
		return
	}
	writeRow(w, conv)
}

func (h *ConversationHandler) Pin(w http.ResponseWriter, r *http.Request) {
	conv, err := manager(h.svc, r).Pin(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "Pin", err)
		return
	}
	writeRow(w, conv)
}

func (h *ConversationHandler) Unpin(w http.ResponseWriter, r *http.Request) {
	conv, err := manager(h.svc, r).Unpin(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "Unpin", err)
		return
	}
	writeRow(w, conv)
}

func (h *ConversationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	conv, err := manager(h.svc, r).Archive(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "Archive", err)
		return
	}
	writeRow(w, conv)
}

func (h *ConversationHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	conv, err := manager(h.svc, r).Unarchive(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "Unarchive", err)
		return
	}
	writeRow(w, conv)
}

type SetCategoryRequest struct {
	Category model.Category `json:"category"`
}

func (h *ConversationHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req SetCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	conv, err := manager(h.svc, r).SetCategory(r.Context(), chatIDParam(r), req.Category)
	if err != nil {
		writeChatError(w, r, "SetCategory", err)
		return
	}
	writeRow(w, conv)
}

func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := manager(h.svc, r).DeleteConversation(r.Context(), chatIDParam(r)); err != nil {
		writeChatError(w, r, "DeleteConversation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type TypingRequest struct {
	Typing bool `json:"typing"`
}

// SetTyping: HTTP-вариант события typing из WebSocket.
func (h *ConversationHandler) SetTyping(w http.ResponseWriter, r *http.Request) {
	var req TypingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	target, err := h.svc.ResolveTarget(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "SetTyping", err)
		return
	}
	if err := manager(h.svc, r).SetTyping(r.Context(), target, req.Typing); err != nil {
		writeChatError(w, r, "SetTyping", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ConversationHandler) GetTyping(w http.ResponseWriter, r *http.Request) {
	target, err := h.svc.ResolveTarget(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "GetTyping", err)
		return
	}
	typing, err := manager(h.svc, r).Typing(r.Context(), target)
	if err != nil {
		writeChatError(w, r, "GetTyping", err)
		return
	}
	writeJSON(w, http.StatusOK, typing)
}
