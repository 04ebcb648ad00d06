package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	AllowedOrigins   []string
	AllowCredentials bool
	ReadOnly         bool
}

// NewRouter wires the HTTP routes exposed by the backend API.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	if len(deps.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(deps.AllowedOrigins, deps.AllowCredentials))
	}

	health := healthHandler(logger, deps.Health)
	r.Get("/healthz", health)

	r.Route("/api", func(api chi.Router) {
		if deps.ReadOnly {
			api.Use(readOnlyMiddleware)
		}
		api.Get("/health", health)
		if deps.API == nil {
			return
		}
		h := deps.API

		api.Route("/ledger", func(lr chi.Router) {
			lr.Get("/", h.listLedger)
			lr.Post("/", h.appendLedger)
			lr.Post("/append", h.appendLedger)
			lr.Post("/reset", h.resetLedger)
			lr.Get("/verify", h.verifyLedger)
			lr.Get("/{id}", h.getLedgerEvent)
		})

		api.Route("/users", func(ur chi.Router) {
			ur.Get("/", h.listUsers)
			ur.Post("/", h.createUser)
			ur.Get("/{id}", h.getUser)
			ur.Put("/{id}", h.updateUser)
			ur.Delete("/{id}", h.deleteUser)
			ur.Post("/{id}/verify", h.verifyUser)
			ur.Post("/{id}/evaluate", h.evaluateUser)
			ur.Get("/{id}/risk-flags", h.userRiskFlags)
			ur.Get("/{id}/links", h.userLinks)
		})

		api.Route("/properties", func(pr chi.Router) {
			pr.Get("/", h.listProperties)
			pr.Post("/", h.createProperty)
			pr.Get("/{id}", h.getProperty)
			pr.Put("/{id}", h.updateProperty)
			pr.Delete("/{id}", h.deleteProperty)
			pr.Post("/{id}/transfer", h.transferProperty)
		})

		api.Route("/offers", func(ofr chi.Router) {
			ofr.Get("/", h.listOffers)
			ofr.Post("/", h.createOffer)
			ofr.Get("/{id}", h.getOffer)
			ofr.Put("/{id}", h.updateOffer)
			ofr.Delete("/{id}", h.deleteOffer)
		})

		api.Get("/risk-flags", h.listRiskFlags)
		api.Post("/risk-flags/{id}/resolve", h.resolveRiskFlag)

		api.Post("/auth/login", h.login)
		api.Get("/auth/me", h.me)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func healthHandler(logger *slog.Logger, health HealthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		report := HealthReport{Status: "ok"}
		if health != nil {
			report = health.Probe(ctx)
		}

		status := http.StatusOK
		if report.Status == "down" {
			logger.Error("health probe failed", "error", report.Error)
			status = http.StatusServiceUnavailable
		} else if report.Error != "" {
			logger.Warn("health probe degraded", "error", report.Error)
		}
		respondJSON(w, status, envelope{Success: status == http.StatusOK, Data: report})
	}
}

// readOnlyMiddleware rejects every request that could change state.
func readOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			respondJSON(w, http.StatusForbidden, envelope{
				Error:   "read-only mode",
				Message: "this deployment serves read-only demo data",
			})
		}
	})
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func corsMiddleware(allowedOrigins []string, allowCredentials bool) func(http.Handler) http.Handler {
	normalized := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		normalized[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			explicit := origin != "" && containsOrigin(normalized, origin)
			if origin == "" || (!explicit && !containsOrigin(normalized, "*")) {
				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					// Reject pre-flight from origins outside the allow list.
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Credentials are only shared with explicitly listed origins.
			if explicit {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
				if allowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			} else {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-ID")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func containsOrigin(set map[string]struct{}, origin string) bool {
	_, ok := set[origin]
	return ok
}
