package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/middleware"
	"github.com/lingochat/internal/model"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("writeJSON encode: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeChatError переводит ошибки ядра в HTTP-статус. Неизвестные: 500 с логом.
func writeChatError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, chat.ErrInvalidTarget),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrInvalidCategory),
		errors.Is(err, chat.ErrInvalidInput),
		errors.Is(err, chat.ErrInvalidLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, chat.ErrBlocked), errors.Is(err, chat.ErrNotMember):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, chat.ErrPinLimitReached),
		errors.Is(err, chat.ErrConversationArchived),
		errors.Is(err, chat.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Errorf("%s failed %s", op, logger.Fields{"user": middleware.GetUserID(r.Context()), "path": r.URL.Path, "err": err})
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody читает JSON-тело (не больше 1 MiB). false: ответ 400 уже записан.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return false
	}
	return true
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// targetRequest описывает адресата в теле запроса: userId/groupId явно или chatId из списка чатов.
type targetRequest struct {
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	ChatID  string `json:"chatId,omitempty"`
}

func (t targetRequest) resolve(r *http.Request, svc *chat.Service) (model.ChatTarget, error) {
	target := model.ChatTarget{UserID: t.UserID, GroupID: t.GroupID}
	if target.Valid() {
		return target, nil
	}
	if t.ChatID == "" {
		return model.ChatTarget{}, chat.ErrInvalidTarget
	}
	return svc.ResolveTarget(r.Context(), t.ChatID)
}

// manager: представление текущего пользователя из контекста запроса.
func manager(svc *chat.Service, r *http.Request) *chat.Manager {
	return svc.Manager(middleware.GetUserID(r.Context()))
}

// writeRow отвечает 204, если строки чата нет и изменение было no-op.
func writeRow(w http.ResponseWriter, conv *model.Conversation) {
	if conv == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func chatIDParam(r *http.Request) string { return chi.URLParam(r, "chatId") }
