package bridge

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter mounts every bridge endpoint.
func NewRouter(proxy *Proxy, webhooks *WebhookHandler, hub *Hub, favs *Favorites, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "bridge is running"})
	})

	r.Route("/api/favorites", favs.Routes)
	r.Handle("/api/*", proxy)

	r.Post("/webhook", webhooks.ServeHTTP)
	r.Post("/webhook/{event}", webhooks.ServeHTTP)

	r.Get("/ws", hub.ServeHTTP)
	r.Get("/ws/", hub.ServeHTTP)
	r.Get("/ws/{phone}", hub.ServeHTTP)
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)))
		})
	}
}
