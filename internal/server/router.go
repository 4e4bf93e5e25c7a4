package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes builds the router for s.
func SetupRoutes(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.RateLimiter.RateLimit(s.RateLimitRequests, s.RateLimitWindow))

	optional := s.AuthMiddleware.OptionalAuth
	api.HandleFunc("/talleres", s.PlacesHandler.Workshops).Methods(http.MethodGet)
	api.Handle("/talleres/ranked", optional(http.HandlerFunc(s.PlacesHandler.Ranked))).Methods(http.MethodGet)
	api.Handle("/diagnostico", optional(http.HandlerFunc(s.DiagnosisHandler.Diagnose))).Methods(http.MethodPost)

	if s.accountsEnabled() {
		protect := s.AuthMiddleware.Authenticate
		api.HandleFunc("/auth/register", s.AuthHandler.Register).Methods(http.MethodPost)
		api.HandleFunc("/auth/login", s.AuthHandler.Login).Methods(http.MethodPost)
		api.Handle("/auth/profile", protect(http.HandlerFunc(s.AuthHandler.GetProfile))).Methods(http.MethodGet)
		api.Handle("/historial", protect(http.HandlerFunc(s.HistoryHandler.List))).Methods(http.MethodGet)
	}

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"accounts": s.accountsEnabled(),
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not found", "kind": "not_found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Method not allowed", "kind": "method_not_allowed"})
}
