package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lingochat/internal/logger"
)

// RequestLog пишет длительность запроса по шаблону маршрута (/api/chats/{chatId}/pin),
// чтобы id в URL не размножали ключи логов.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		logger.LogDuration("http "+r.Method+" "+path, start)
	})
}
