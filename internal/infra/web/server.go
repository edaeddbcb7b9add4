package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-media-relay/internal/domain/ports/repository"
	"telegram-media-relay/internal/usecase"
)

// Server is the ops surface: liveness, metrics, and a small JWT-guarded
// operator API (stats, text broadcast).
type Server struct {
	recipients repository.RecipientRepository
	broadcast  usecase.BroadcastUseCase
	auth       *AuthManager
	adminKey   string
	log        *zerolog.Logger
}

func NewServer(
	recipients repository.RecipientRepository,
	broadcast usecase.BroadcastUseCase,
	auth *AuthManager,
	adminKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		recipients: recipients,
		broadcast:  broadcast,
		auth:       auth,
		adminKey:   adminKey,
		log:        logger,
	}
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/login", s.handleLogin)
		api.Group(func(guarded chi.Router) {
			guarded.Use(s.authMiddleware)
			guarded.Get("/stats", s.handleStats)
			guarded.Post("/broadcast", s.handleBroadcast)
		})
	})

	return r
}

// authMiddleware requires a valid operator JWT on every guarded route.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.adminKey) == 0 {
			s.log.Error().Msg("ops admin key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
