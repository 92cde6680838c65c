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

	"github.com/go-chi/chi/v5"

	"github.com/mqconsole/mqconsole/internal/observability/logger"
	"github.com/mqconsole/mqconsole/internal/rbac"
)

// RoleBindingResponse is one row of a tenant's binding listing
type RoleBindingResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      int64  `json:"user_id"`
	UserName    string `json:"user_name"`
	RoleID      int64  `json:"role_id"`
	RoleName    string `json:"role_name"`
}

// ListRoleBindings returns the bindings for roles sourced from a tenant
// @Summary List Role Bindings
// @Description List a tenant's role bindings enriched with user and role names
// @Tags RoleBinding
// @Produce json
// @Security TokenAuth
// @Param tenant path string true "Tenant"
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]string
// @Router /role-binding/{tenant} [get]
func (h *Handler) ListRoleBindings(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	views, err := h.rbacService.RoleBindingList(r.Context(), tenant)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list role bindings",
			logger.Tenant(tenant),
			logger.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "failed to list role bindings")
		return
	}

	data := make([]RoleBindingResponse, 0, len(views))
	for _, v := range views {
		data = append(data, RoleBindingResponse{
			Name:        v.Name,
			Description: v.Description,
			UserID:      v.UserID,
			UserName:    v.UserName,
			RoleID:      v.RoleID,
			RoleName:    v.RoleName,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total": len(data),
		"data":  data,
	})
}

// ValidateRoleBinding checks whether a binding of (tenant, roleName) to
// userName could be created, without persisting anything. The error strings
// are the validation contract and go back verbatim.
// @Summary Validate Role Binding
// @Description Check whether a binding of a tenant's role to a user could be created
// @Tags RoleBinding
// @Produce json
// @Security TokenAuth
// @Param tenant path string true "Tenant"
// @Param roleName path string true "Role Name"
// @Param userName path string true "User Name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /role-binding/{tenant}/{roleName}/{userName} [get]
func (h *Handler) ValidateRoleBinding(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	roleName := chi.URLParam(r, "roleName")
	userName := chi.URLParam(r, "userName")

	msg, err := h.rbacService.ValidateCreateRoleBinding(r.Context(), GetToken(r.Context()), tenant, roleName, userName)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": msg,
	})
}

// CreateRoleBindingRequest carries the optional binding description
type CreateRoleBindingRequest struct {
	Description string `json:"description"`
}

// CreateRoleBinding validates and persists a binding
// @Summary Create Role Binding
// @Description Bind a tenant's role to a user
// @Tags RoleBinding
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param tenant path string true "Tenant"
// @Param roleName path string true "Role Name"
// @Param userName path string true "User Name"
// @Param request body CreateRoleBindingRequest false "Binding Description"
// @Success 201 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /role-binding/{tenant}/{roleName}/{userName} [put]
func (h *Handler) CreateRoleBinding(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	roleName := chi.URLParam(r, "roleName")
	userName := chi.URLParam(r, "userName")

	var req CreateRoleBindingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	err := h.rbacService.CreateRoleBinding(r.Context(), GetToken(r.Context()), tenant, roleName, userName, req.Description)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "role binding created successfully",
	})
}

// DeleteRoleBinding removes a binding after checking the acting user holds
// a binding to the same role
// @Summary Delete Role Binding
// @Description Remove the binding of a tenant's role to a user
// @Tags RoleBinding
// @Produce json
// @Security TokenAuth
// @Param tenant path string true "Tenant"
// @Param roleName path string true "Role Name"
// @Param userName path string true "User Name"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /role-binding/{tenant}/{roleName}/{userName} [delete]
func (h *Handler) DeleteRoleBinding(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	roleName := chi.URLParam(r, "roleName")
	userName := chi.URLParam(r, "userName")

	err := h.rbacService.DeleteRoleBindingByName(r.Context(), GetToken(r.Context()), tenant, roleName, userName)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "role binding deleted successfully",
	})
}

// respondValidationError maps the validation sentinels to HTTP statuses,
// keeping the original message text in the error field.
func respondValidationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrActingUserNotFound):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, rbac.ErrIllegalOperation):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, rbac.ErrTargetUserNotFound), errors.Is(err, rbac.ErrRoleNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rbac.ErrBindingExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, rbac.ErrBindingNotFound):
		respondError(w, http.StatusNotFound, "role binding not found")
	default:
		respondError(w, http.StatusInternalServerError, "operation failed")
	}
}
