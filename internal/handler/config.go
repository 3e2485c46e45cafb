package handler

import (
	"net/http"

	"github.com/lingochat/internal/config"
)

// ConfigHandler отдаёт публичные параметры для клиента (без идентификации).
type ConfigHandler struct {
	cfg            *config.Config
	vapidPublicKey string
}

// NewConfigHandler; пустой vapidPublicKey: пуши выключены.
func NewConfigHandler(cfg *config.Config, vapidPublicKey string) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, vapidPublicKey: vapidPublicKey}
}

func (h *ConfigHandler) GetPushConfig(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Push.Enabled || h.vapidPublicKey == "" {
		writeJSON(w, http.StatusOK, map[string]any{"enabled": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":        true,
		"vapidPublicKey": h.vapidPublicKey,
	})
}

// GetChatConfig: лимиты, которые клиент показывает до ответа сервера.
func (h *ConfigHandler) GetChatConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"maxPinned":        h.cfg.MaxPinned,
		"typingTtlSeconds": int(h.cfg.TypingTTL.Seconds()),
	})
}
