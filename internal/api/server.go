// Package api serves the tracker over a JSON REST interface.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/unklstewy/adsb-tracker/internal/auth"
	"github.com/unklstewy/adsb-tracker/internal/db"
	"github.com/unklstewy/adsb-tracker/pkg/adsb"
	"github.com/unklstewy/adsb-tracker/pkg/airports"
	"github.com/unklstewy/adsb-tracker/pkg/coordinates"
	"github.com/unklstewy/adsb-tracker/pkg/tracker"
)

// Tracker is the slice of *tracker.Tracker the API drives.
type Tracker interface {
	SetViewport(center coordinates.Geographic, radiusNM, zoom float64) error
	SetEnabledCategories(set adsb.CategorySet) error
	CurrentSnapshot() []adsb.Aircraft
	Aircraft(hex string) (adsb.Aircraft, bool)
	Status() tracker.Status
	Pause()
	Resume()
}

// HistorySource serves recorded position history. Optional.
type HistorySource interface {
	GetPositionHistory(ctx context.Context, hex string, since time.Time) ([]db.Position, error)
}

// Options configures a Server.
type Options struct {
	Tracker  Tracker
	Airports *airports.Directory

	// Auth guards the operator endpoints. Nil leaves them open.
	Auth *auth.Service

	// History enables /aircraft/{hex}/history when set.
	History HistorySource

	StaleThreshold  time.Duration
	DefaultRadiusNM float64
	CORSOrigins     []string
	Logger          zerolog.Logger
}

// Server holds the HTTP router and its dependencies
type Server struct {
	router *chi.Mux
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

type contextKey string

const claimsKey contextKey = "claims"

// NewServer builds the router.
func NewServer(opts Options) *Server {
	if opts.StaleThreshold <= 0 {
		opts.StaleThreshold = time.Minute
	}
	if opts.DefaultRadiusNM <= 0 {
		opts.DefaultRadiusNM = 50
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		router: chi.NewRouter(),
		opts:   opts,
		logger: opts.Logger,
		now:    time.Now,
	}
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Get("/aircraft", s.handleGetAircraft)
		r.Get("/aircraft/{hex}", s.handleGetAircraftByHex)
		r.Get("/aircraft/{hex}/history", s.handleGetHistory)
		r.Get("/status", s.handleGetStatus)
		r.Get("/airports", s.handleGetAirports)
		r.Get("/airports/{code}", s.handleGetAirport)

		// Operator routes change what the tracker fetches
		r.Group(func(r chi.Router) {
			r.Use(s.operatorOnly)

			r.Post("/viewport", s.handleSetViewport)
			r.Put("/categories", s.handleSetCategories)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
		})
	})
}

// requestLogger logs one line per request through zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// operatorOnly requires an operator bearer token when auth is configured.
func (s *Server) operatorOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Auth == nil {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := s.opts.Auth.ValidateToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if !auth.CanControlTracker(claims.Role) {
			respondError(w, http.StatusForbidden, auth.ErrUnauthorized.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
