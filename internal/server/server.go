package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ukydev/taller-finder/internal/auth"
	"github.com/ukydev/taller-finder/internal/handlers"
	"github.com/ukydev/taller-finder/internal/middleware"
)

// Server is the HTTP API of the workshop finder.
type Server struct {
	Addr string

	PlacesHandler    *handlers.PlacesHandler
	DiagnosisHandler *handlers.DiagnosisHandler

	// Account routes are mounted only when both are set.
	AuthHandler    *handlers.AuthHandler
	HistoryHandler *handlers.HistoryHandler

	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimitMiddleware

	RateLimitRequests int
	RateLimitWindow   time.Duration

	srv *http.Server
}

// Options holds the collaborators of a Server.
type Options struct {
	Addr              string
	Places            *handlers.PlacesHandler
	Diagnosis         *handlers.DiagnosisHandler
	Auth              *handlers.AuthHandler
	History           *handlers.HistoryHandler
	AuthService       *auth.Service
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewServer creates a server from opts.
func NewServer(opts Options) *Server {
	return &Server{
		Addr:              opts.Addr,
		PlacesHandler:     opts.Places,
		DiagnosisHandler:  opts.Diagnosis,
		AuthHandler:       opts.Auth,
		HistoryHandler:    opts.History,
		AuthMiddleware:    middleware.NewAuthMiddleware(opts.AuthService),
		RateLimiter:       middleware.NewRateLimitMiddleware(),
		RateLimitRequests: opts.RateLimitRequests,
		RateLimitWindow:   opts.RateLimitWindow,
	}
}

// accountsEnabled reports whether the account and history routes are served.
func (s *Server) accountsEnabled() bool {
	return s.AuthHandler != nil && s.HistoryHandler != nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return middleware.CORS(middleware.RequestID(middleware.Logging(SetupRoutes(s))))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           otelhttp.NewHandler(s.Handler(), "taller-finder"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("HTTP server shutdown error")
		}
	}()

	log.WithFields(log.Fields{
		"addr":     s.Addr,
		"accounts": s.accountsEnabled(),
	}).Info("HTTP server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
