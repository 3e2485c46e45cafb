package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

const UserIDHeader = "X-User-Id"

// Identity заменяет аутентификацию: пользователь берётся из заголовка X-User-Id,
// для WebSocket (браузер не шлёт заголовки при upgrade) из query user_id.
// Без идентификатора отвечает 401.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
		}
		if userID == "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}
