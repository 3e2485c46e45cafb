package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lingochat/internal/chat"
	"github.com/lingochat/internal/config"
	"github.com/lingochat/internal/media"
	"github.com/lingochat/internal/middleware"
	"github.com/lingochat/internal/push"
	"github.com/lingochat/internal/ws"
)

// Deps содержит всё, что нужно роутеру. Push и Media могут быть nil, тогда их маршруты не регистрируются.
type Deps struct {
	Config         *config.Config
	Service        *chat.Service
	Hub            *ws.Hub
	Push           *push.Notifier
	VAPIDPublicKey string
	Media          *media.Store
}

func NewRouter(d Deps) http.Handler {
	userH := NewUserHandler(d.Service)
	groupH := NewGroupHandler(d.Service)
	convH := NewConversationHandler(d.Service)
	msgH := NewMessageHandler(d.Service)
	blockH := NewBlockHandler(d.Service)
	trH := NewTranslateHandler(d.Service.Translator())
	configH := NewConfigHandler(d.Config, d.VAPIDPublicKey)
	wsH := NewWSHandler(d.Hub, d.Config.CORSAllowedOrigins)
	limit := middleware.RateLimit(d.Config.RateLimitPerMinute)
	var mediaH *MediaHandler
	if d.Media != nil {
		mediaH = NewMediaHandler(d.Media, int64(d.Config.MaxUploadMB)<<20)
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.RecoverJSON)
	// Не сжимать WebSocket: иначе ResponseWriter не реализует http.Hijacker и upgrade даёт 500.
	r.Use(func(next http.Handler) http.Handler {
		compress := chimw.Compress(5)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, req)
				return
			}
			compress.ServeHTTP(w, req)
		})
	})
	r.Use(middleware.RequestLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: splitOrigins(d.Config.CORSAllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.UserIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(limit)
		r.Post("/api/users", userH.CreateUser)
		r.Get("/api/config/push", configH.GetPushConfig)
		r.Get("/api/config/chat", configH.GetChatConfig)
		if mediaH != nil {
			r.Get(media.URLPrefix+"{name}", mediaH.Serve)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)
		r.Use(limit)

		r.Get("/api/users", userH.GetUsers)
		r.Get("/api/users/me", userH.GetProfile)
		r.Put("/api/users/me", userH.UpdateProfile)
		r.Get("/api/users/{id}", userH.GetUser)

		r.Post("/api/groups", groupH.CreateGroup)
		r.Get("/api/groups/{id}", groupH.GetGroup)

		r.Get("/api/conversations", convH.GetConversations)
		r.Post("/api/messages", msgH.SendMessage)

		r.Route("/api/chats/{chatId}", func(r chi.Router) {
			r.Delete("/", convH.DeleteConversation)
			r.Get("/messages", msgH.GetMessages)
			r.Post("/read", convH.MarkAsRead)
			r.Post("/pin", convH.Pin)
			r.Delete("/pin", convH.Unpin)
			r.Post("/archive", convH.Archive)
			r.Delete("/archive", convH.Unarchive)
			r.Put("/category", convH.SetCategory)
			r.Get("/reactions", msgH.GetReactions)
			r.Post("/typing", convH.SetTyping)
			r.Get("/typing", convH.GetTyping)
			r.Delete("/messages/{messageId}", msgH.DeleteMessage)
			r.Post("/messages/{messageId}/forward", msgH.ForwardMessage)
			r.Post("/messages/{messageId}/reactions", msgH.ToggleReaction)
			r.Post("/messages/{messageId}/star", msgH.ToggleStar)
		})

		r.Get("/api/starred", msgH.GetStarred)
		r.Get("/api/blocked", blockH.GetBlocked)
		r.Post("/api/blocked/{userId}", blockH.Block)
		r.Delete("/api/blocked/{userId}", blockH.Unblock)

		r.Post("/api/translate", trH.Translate)
		if mediaH != nil {
			r.Post("/api/media", mediaH.Upload)
		}

		if d.Push != nil {
			pushH := NewPushHandler(d.Push)
			r.Post("/api/push/subscribe", pushH.Subscribe)
			r.Delete("/api/push/subscribe", pushH.Unsubscribe)
		}
		r.Get("/ws", wsH.ServeWS)
	})
	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
