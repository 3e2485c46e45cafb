package handler

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/middleware"
	"github.com/lingochat/internal/ws"
)

// WSHandler поднимает WebSocket для событий new_message / conversation_updated / typing.
type WSHandler struct {
	hub      *ws.Hub
	origins  []string
	upgrader websocket.Upgrader
}

// NewWSHandler; allowedOrigins в формате CORS_ALLOWED_ORIGINS (через запятую или "*").
func NewWSHandler(hub *ws.Hub, allowedOrigins string) *WSHandler {
	h := &WSHandler{hub: hub, origins: splitOrigins(allowedOrigins)}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.originAllowed,
	}
	return h
}

// originAllowed пропускает запросы без заголовка Origin (не браузер).
func (h *WSHandler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin)
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if !h.originAllowed(r) {
		writeError(w, http.StatusForbidden, "origin not allowed")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("ws upgrade user=%s: %v", userID, err)
		return
	}

	// Соединение живёт дольше запроса: контекст не наследуется от r.
	ctx, cancel := context.WithCancel(context.Background())
	client := ws.NewClient(h.hub, conn, userID)
	client.Start(ctx, cancel)
	h.hub.Register(client)
}
