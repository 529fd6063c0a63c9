package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/chatdesk/internal/metrics"
)

// Handler builds the HTTP router. apiKeys guard /api/v1 only; pages,
// /health and /metrics stay open.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", s.IndexPage)
	r.Get("/chat", s.ChatPage)
	r.Post("/chat", s.ChatSubmit)
	r.Post("/chat/reset", s.ChatReset)
	r.Get("/search", s.SearchPage)
	r.Post("/search", s.SearchSubmit)
	r.Post("/search/reset", s.SearchReset)
	r.Get("/youtube", s.VideoPage)
	r.Post("/youtube", s.VideoSubmit)
	r.Post("/youtube/reset", s.VideoReset)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiKeys))
		r.Post("/chat", s.PostChat)
		r.Get("/chat/history", s.GetChatHistory)
		r.Delete("/chat", s.DeleteChat)
		r.Post("/search", s.PostSearch)
		r.Delete("/search", s.DeleteSearch)
		r.Post("/youtube", s.PostVideo)
		r.Delete("/youtube", s.DeleteVideo)
		r.Post("/embeddings", s.PostEmbeddings)
		r.Get("/usage", s.GetUsage)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	return r
}
