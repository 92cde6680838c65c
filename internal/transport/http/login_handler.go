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

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mqconsole/mqconsole/internal/federation"
	"github.com/mqconsole/mqconsole/internal/observability/logger"
)

// GitHubLoginURL redirects the browser to the provider's authorize page
// @Summary GitHub Login
// @Description Redirect to the GitHub authorization page
// @Tags Login
// @Success 302
// @Router /third-party-login/github/login [get]
func (h *Handler) GitHubLoginURL(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.loginConfig.ProviderLoginURL, http.StatusFound)
}

// GitHubCallback completes the browser login flow. The provider redirects
// here with a code; on success the session token lands in cookies and the
// browser goes back to the console root.
// @Summary GitHub Callback
// @Description Complete the browser login flow; sets Admin-Token, username and tenant cookies
// @Tags Login
// @Param code query string true "Authorization Code"
// @Success 302
// @Failure 401 {object} map[string]string
// @Router /third-party-login/callback/github [get]
func (h *Handler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code parameter is required")
		return
	}

	sessionKey := h.sessionKey(w, r)

	result, err := h.federationService.Login(r.Context(), code, sessionKey)
	if err != nil {
		h.recordLogin(r, "cookie", false)
		if errors.Is(err, federation.ErrAuthenticationFailed) {
			respondError(w, http.StatusUnauthorized, "Authentication failed, please check carefully")
			return
		}
		slog.ErrorContext(r.Context(), "github login failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.recordLogin(r, "cookie", true)

	// The console UI reads these three cookies; tenant defaults to the
	// user's own name until the user switches tenants.
	http.SetCookie(w, &http.Cookie{Name: "Admin-Token", Value: result.Token, Path: "/", Secure: h.loginConfig.CookieSecure})
	http.SetCookie(w, &http.Cookie{Name: "username", Value: result.User.Name, Path: "/", Secure: h.loginConfig.CookieSecure})
	http.SetCookie(w, &http.Cookie{Name: "tenant", Value: result.User.Name, Path: "/", Secure: h.loginConfig.CookieSecure})

	http.Redirect(w, r, "/", http.StatusFound)
}

// TokenLoginRequest carries the provider code for the JSON login flow
type TokenLoginRequest struct {
	Code string `json:"code"`
}

// GitHubTokenLogin completes the login flow for API clients. Same sequence
// as the browser callback, but the token comes back in the body instead of
// cookies.
// @Summary GitHub Token Login
// @Description Complete the login flow and return the session token in the body
// @Tags Login
// @Accept json
// @Produce json
// @Param request body TokenLoginRequest true "Authorization Code"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /third-party-login/github/token [post]
func (h *Handler) GitHubTokenLogin(w http.ResponseWriter, r *http.Request) {
	var req TokenLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionKey := h.sessionKey(w, r)

	result, err := h.federationService.Login(r.Context(), req.Code, sessionKey)
	if err != nil {
		h.recordLogin(r, "json", false)
		if errors.Is(err, federation.ErrAuthenticationFailed) {
			respondError(w, http.StatusUnauthorized, "Authentication failed, please check carefully")
			return
		}
		slog.ErrorContext(r.Context(), "github login failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.recordLogin(r, "json", true)

	respondJSON(w, http.StatusOK, map[string]string{
		"token":    result.Token,
		"username": result.User.Name,
	})
}

// sessionKey returns the caller's session key, minting one and setting the
// cookie when the request carries none.
func (h *Handler) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(h.loginConfig.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.loginConfig.CookieName,
		Value:    key,
		Path:     "/",
		Secure:   h.loginConfig.CookieSecure,
		HttpOnly: true,
	})
	return key
}

func (h *Handler) recordLogin(r *http.Request, mode string, success bool) {
	if h.loginCounter == nil {
		return
	}
	h.loginCounter.Add(r.Context(), 1,
		metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.Bool("success", success),
		),
	)
}
