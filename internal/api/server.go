// Package api provides the HTTP API server and handlers for the mailib server.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mailib/mailib-server/internal/auth"
	"github.com/mailib/mailib-server/internal/ratelimit"
)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexStats reports the size of the full-text index.
type IndexStats interface {
	DocumentCount() (uint64, error)
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string
	SearchRPS   float64
	SearchBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	db            Pinger
	index         IndexStats
	router        *chi.Mux
	api           huma.API
	searchLimiter *ratelimit.KeyedRateLimiter
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, db Pinger, index IndexStats, tokens TokenVerifier, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(tokens))

	humaConfig := huma.DefaultConfig("mailib API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	RegisterErrorHandler(logger)

	s := &Server{
		services:      services,
		db:            db,
		index:         index,
		router:        router,
		api:           humachi.New(router, humaConfig),
		searchLimiter: ratelimit.New(opts.SearchRPS, opts.SearchBurst),
		logger:        logger,
	}

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerLibraryRoutes()
	s.registerAnalyticsRoutes()
	s.registerEntityRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.searchLimiter.Stop()
}

// bearer is the security requirement shared by every authenticated operation.
var bearer = []map[string][]string{{"bearer": {}}}
