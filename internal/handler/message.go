package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/model"
)

// MessageHandler: отправка, история, удаление, пересылка, реакции и избранное.
type MessageHandler struct {
	svc *chat.Service
}

func NewMessageHandler(svc *chat.Service) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type SendMessageRequest struct {
	targetRequest
	Text      string          `json:"text"`
	MediaType model.MediaType `json:"mediaType,omitempty"`
	MediaURL  string          `json:"mediaUrl,omitempty"`
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	target, err := req.resolve(r, h.svc)
	if err != nil {
		writeChatError(w, r, "SendMessage", err)
		return
	}
	var opts []chat.SendOption
	if req.MediaURL != "" {
		opts = append(opts, chat.WithMedia(req.MediaType, req.MediaURL))
	}
	msg, err := manager(h.svc, r).Send(r.Context(), target, req.Text, opts...)
	if err != nil {
		writeChatError(w, r, "SendMessage", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := manager(h.svc, r).LoadMessages(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "GetMessages", err)
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// DeleteMessage удаляет сообщение только у текущего пользователя.
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := manager(h.svc, r).DeleteMessage(r.Context(), chatIDParam(r), chi.URLParam(r, "messageId")); err != nil {
		writeChatError(w, r, "DeleteMessage", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MessageHandler) ForwardMessage(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	target, err := req.resolve(r, h.svc)
	if err != nil {
		writeChatError(w, r, "ForwardMessage", err)
		return
	}
	msg, err := manager(h.svc, r).ForwardMessage(r.Context(), chatIDParam(r), chi.URLParam(r, "messageId"), target)
	if err != nil {
		writeChatError(w, r, "ForwardMessage", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

type ReactionRequest struct {
	Emoji string `json:"emoji"`
}

// ToggleReaction: повторная та же реакция снимает её.
func (h *MessageHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	var req ReactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reactions, err := manager(h.svc, r).ToggleReaction(r.Context(), chatIDParam(r), chi.URLParam(r, "messageId"), req.Emoji)
	if err != nil {
		writeChatError(w, r, "ToggleReaction", err)
		return
	}
	if reactions == nil {
		reactions = []model.Reaction{}
	}
	writeJSON(w, http.StatusOK, reactions)
}

func (h *MessageHandler) GetReactions(w http.ResponseWriter, r *http.Request) {
	reactions, err := manager(h.svc, r).Reactions(r.Context(), chatIDParam(r))
	if err != nil {
		writeChatError(w, r, "GetReactions", err)
		return
	}
	writeJSON(w, http.StatusOK, reactions)
}

func (h *MessageHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	starred, err := manager(h.svc, r).ToggleStar(r.Context(), chatIDParam(r), chi.URLParam(r, "messageId"))
	if err != nil {
		writeChatError(w, r, "ToggleStar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"starred": starred})
}

func (h *MessageHandler) GetStarred(w http.ResponseWriter, r *http.Request) {
	views, err := manager(h.svc, r).ListStarred(r.Context())
	if err != nil {
		writeChatError(w, r, "GetStarred", err)
		return
	}
	if views == nil {
		views = []model.StarredView{}
	}
	writeJSON(w, http.StatusOK, views)
}
