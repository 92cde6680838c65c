// Copyright 2026 The MQConsole Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// @title MQConsole API
// @version 1.0.0
// @description Management console backend for a multi-tenant messaging cluster
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0

// @host localhost:7750
// @BasePath /mqconsole

// @securityDefinitions.apikey TokenAuth
// @in header
// @name token

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"

	"github.com/mqconsole/mqconsole/internal/audit"
	"github.com/mqconsole/mqconsole/internal/federation"
	"github.com/mqconsole/mqconsole/internal/identity"
	"github.com/mqconsole/mqconsole/internal/rbac"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService   *identity.Service
	rbacService       *rbac.Service
	federationService *federation.Service
	auditLogger       audit.Logger
	loginConfig       LoginConfig
	loginCounter      metric.Int64Counter
}

// LoginConfig holds the pieces of the login flow owned by the transport:
// where the provider login page lives and how the session-key cookie is set.
type LoginConfig struct {
	ProviderLoginURL string
	CookieName       string
	CookieSecure     bool
}

// NewHandler creates a new HTTP handler. loginCounter may be nil when
// metrics are disabled.
func NewHandler(
	identityService *identity.Service,
	rbacService *rbac.Service,
	federationService *federation.Service,
	auditLogger audit.Logger,
	loginConfig LoginConfig,
	loginCounter metric.Int64Counter,
) *Handler {
	if loginConfig.CookieName == "" {
		loginConfig.CookieName = "mqconsole_session"
	}
	return &Handler{
		identityService:   identityService,
		rbacService:       rbacService,
		federationService: federationService,
		auditLogger:       auditLogger,
		loginConfig:       loginConfig,
		loginCounter:      loginCounter,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/mqconsole", func(r chi.Router) {
		// Third-party login happens before the user holds a token, so
		// these routes carry no authentication.
		r.Route("/third-party-login", func(r chi.Router) {
			r.Get("/github/login", h.GitHubLoginURL)
			r.Get("/callback/github", h.GitHubCallback)
			r.Post("/github/token", h.GitHubTokenLogin)
		})

		// Role binding administration
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/role-binding", func(r chi.Router) {
				r.Get("/{tenant}", h.ListRoleBindings)
				r.Get("/{tenant}/{roleName}/{userName}", h.ValidateRoleBinding)
				r.Put("/{tenant}/{roleName}/{userName}", h.CreateRoleBinding)
				r.Delete("/{tenant}/{roleName}/{userName}", h.DeleteRoleBinding)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "mqconsole",
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
