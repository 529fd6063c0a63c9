package chi

import (
	"html/template"

	"go.uber.org/zap"
)

// DefaultMaxUploadBytes caps multipart document uploads.
const DefaultMaxUploadBytes = 32 << 20

// Services bundles the use cases served over HTTP. Embed and Usage may be
// nil when no embedding model is configured.
type Services struct {
	Chat     ChatService
	Search   SearchService
	Video    VideoService
	Embed    EmbedService
	Health   HealthService
	Usage    UsageService
	Sessions SessionStore
}

// Server serves the chat pages and the JSON API.
type Server struct {
	chat     ChatService
	search   SearchService
	video    VideoService
	embed    EmbedService
	health   HealthService
	usage    UsageService
	sessions SessionStore

	logger         *zap.Logger
	errorHandlers  []errorHandler
	pages          map[string]*template.Template
	maxUploadBytes int64
	secureCookies  bool
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes overrides DefaultMaxUploadBytes.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(on bool) Option {
	return func(s *Server) { s.secureCookies = on }
}

// NewServer creates the HTTP server.
func NewServer(svc Services, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		chat:           svc.Chat,
		search:         svc.Search,
		video:          svc.Video,
		embed:          svc.Embed,
		health:         svc.Health,
		usage:          svc.Usage,
		sessions:       svc.Sessions,
		logger:         logger,
		pages:          parsePages(),
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	s.errorHandlers = defaultErrorHandlers()
	for _, o := range opts {
		o(s)
	}
	return s
}
