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

package federation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mqconsole/mqconsole/internal/audit"
	"github.com/mqconsole/mqconsole/internal/identity"
	"github.com/mqconsole/mqconsole/internal/observability/logger"
	"github.com/mqconsole/mqconsole/internal/rbac"
	"github.com/mqconsole/mqconsole/internal/token"
)

// autoAssignSource is the fixed tenant source the auto-assign role is
// looked up under.
const autoAssignSource = "admin"

// Service reconciles external identities into local accounts and drives
// the login sequence end to end. Transport adapters only shape its result.
type Service struct {
	provider     Provider
	users        identity.Repository
	roles        rbac.RoleRepository
	bindings     rbac.RoleBindingRepository
	tokens       *token.Service
	assignedRole string
	auditLogger  audit.Logger
	now          func() time.Time
}

// NewService creates a new federation service. assignedRole may be empty,
// which disables role auto-assignment on login.
func NewService(
	provider Provider,
	users identity.Repository,
	roles rbac.RoleRepository,
	bindings rbac.RoleBindingRepository,
	tokens *token.Service,
	assignedRole string,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		provider:     provider,
		users:        users,
		roles:        roles,
		bindings:     bindings,
		tokens:       tokens,
		assignedRole: assignedRole,
		auditLogger:  auditLogger,
		now:          time.Now,
	}
}

// LoginResult is the transport-agnostic outcome of a successful login
type LoginResult struct {
	User  *identity.User
	Token string
}

// SyncUser reconciles an external profile into a local account. A repeat
// login only rotates the stored access token; the other profile fields are
// kept as-is so locally edited metadata survives. A first login copies the
// whole profile. Only a confirmed missing user takes the create path; any
// other lookup failure propagates before a write is attempted.
func (s *Service) SyncUser(ctx context.Context, profile *Profile) (*identity.User, error) {
	local, err := s.users.FindByName(ctx, profile.Name)
	switch {
	case err == nil:
		local.AccessToken = profile.AccessToken
		if err := s.users.Update(ctx, local); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		return local, nil
	case !errors.Is(err, identity.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	local = &identity.User{
		Name:        profile.Name,
		AccessToken: profile.AccessToken,
		Email:       profile.Email,
		Company:     profile.Company,
		Location:    profile.Location,
	}
	id, err := s.users.Save(ctx, local)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	local.UserID = id

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeUserSynced,
		ActorID:   local.UserID,
		ActorName: local.Name,
		Resource:  "user",
	})

	return local, nil
}

// AssignRole binds the configured auto-assign role to user if the user
// does not hold it yet. Best effort: a misconfigured role is logged and
// audited but never fails the login.
func (s *Service) AssignRole(ctx context.Context, user *identity.User) {
	if s.assignedRole == "" {
		return
	}

	role, err := s.roles.FindByName(ctx, s.assignedRole, autoAssignSource)
	if err != nil {
		if !errors.Is(err, rbac.ErrRoleNotFound) {
			slog.ErrorContext(ctx, "failed to look up auto-assign role",
				logger.RoleName(s.assignedRole),
				logger.Error(err),
			)
			return
		}
		slog.ErrorContext(ctx, "cannot assign role: role does not exist",
			logger.RoleName(s.assignedRole),
			logger.UserName(user.Name),
			logger.Error(err),
		)
		s.auditLogger.Log(ctx, audit.Event{
			Type:      audit.TypeRoleAssignFailed,
			ActorID:   user.UserID,
			ActorName: user.Name,
			Resource:  s.assignedRole,
			Metadata:  map[string]any{"reason": "role_not_found"},
		})
		return
	}

	_, err = s.bindings.FindByUserAndRole(ctx, user.UserID, role.RoleID)
	switch {
	case err == nil:
		return
	case !errors.Is(err, rbac.ErrBindingNotFound):
		slog.WarnContext(ctx, "failed to check existing role binding",
			logger.RoleName(s.assignedRole),
			logger.UserName(user.Name),
			logger.Error(err),
		)
		return
	}

	binding := &rbac.RoleBinding{
		UserID: user.UserID,
		RoleID: role.RoleID,
		Name:   user.Name,
	}
	if err := s.bindings.Save(ctx, binding); err != nil {
		// A concurrent login may have inserted the binding first; either
		// way the user holds the role now.
		slog.WarnContext(ctx, "failed to save auto-assigned role binding",
			logger.RoleName(s.assignedRole),
			logger.UserName(user.Name),
			logger.Error(err),
		)
		return
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeRoleAssigned,
		ActorID:   user.UserID,
		ActorName: user.Name,
		Resource:  s.assignedRole,
	})
}

// Login runs the full third-party login sequence: exchange the code, fetch
// the profile, reconcile the local account, auto-assign the configured
// role, mint a fresh session token and bind it to sessionKey. The provider
// access token is discarded once the session token wraps it.
func (s *Service) Login(ctx context.Context, code, sessionKey string) (*LoginResult, error) {
	providerToken, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: "github",
			Metadata: map[string]any{"reason": "code_exchange_failed"},
		})
		return nil, ErrAuthenticationFailed
	}

	profile, err := s.provider.FetchProfile(ctx, providerToken)
	if err != nil || profile == nil {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: "github",
			Metadata: map[string]any{"reason": "profile_unavailable"},
		})
		return nil, ErrAuthenticationFailed
	}

	slog.InfoContext(ctx, "authentication successful, logging in", logger.UserName(profile.Name))

	user, err := s.SyncUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	s.AssignRole(ctx, user)

	// The timestamp makes the session token unique per login even when the
	// provider returns the same access token.
	seed := user.AccessToken + strconv.FormatInt(s.now().UnixMilli(), 10)
	sessionToken, err := s.tokens.ToToken(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	user.AccessToken = sessionToken
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to rotate access token: %w", err)
	}

	if err := s.tokens.SetToken(ctx, sessionKey, sessionToken); err != nil {
		return nil, fmt.Errorf("failed to bind session token: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeLoginSuccess,
		ActorID:   user.UserID,
		ActorName: user.Name,
		Resource:  "github",
	})
	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeTokenIssued,
		ActorID:   user.UserID,
		ActorName: user.Name,
		Resource:  "session_token",
	})

	return &LoginResult{User: user, Token: sessionToken}, nil
}
