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

package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/mqconsole/mqconsole/internal/audit"
	"github.com/mqconsole/mqconsole/internal/identity"
)

// Service decides whether role-binding operations are allowed. The objects
// under protection are the bindings themselves: holding a binding to a role
// is what authorizes operating on that role's bindings.
type Service struct {
	users       identity.Repository
	roles       RoleRepository
	bindings    RoleBindingRepository
	auditLogger audit.Logger
}

// NewService creates a new authorization service
func NewService(
	users identity.Repository,
	roles RoleRepository,
	bindings RoleBindingRepository,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		users:       users,
		roles:       roles,
		bindings:    bindings,
		auditLogger: auditLogger,
	}
}

// ValidateCurrentUser checks that the user behind token genuinely holds a
// binding to binding.RoleID. This is a pure existence test: it never
// consults the role's verb set. Any binding to the role is sufficient.
// Only confirmed absence produces a validation verdict; a failing store
// propagates as an error instead of an authorization answer.
func (s *Service) ValidateCurrentUser(ctx context.Context, token string, binding *RoleBinding) (string, error) {
	user, err := s.users.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return "", ErrActingUserNotFound
		}
		return "", fmt.Errorf("failed to resolve acting user: %w", err)
	}

	if _, err := s.bindings.FindByUserAndRole(ctx, user.UserID, binding.RoleID); err != nil {
		if errors.Is(err, ErrBindingNotFound) {
			return "", ErrIllegalOperation
		}
		return "", fmt.Errorf("failed to look up role binding: %w", err)
	}

	return MsgValidateCurrentUser, nil
}

// ValidateCreateRoleBinding checks that a binding of role (roleName, tenant)
// to userName could be created. Checks run in a fixed order so the caller
// always gets the most specific error: missing user, then missing role,
// then duplicate binding. The binding is validated only, never persisted.
func (s *Service) ValidateCreateRoleBinding(ctx context.Context, token, tenant, roleName, userName string) (string, error) {
	user, err := s.users.FindByName(ctx, userName)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return "", ErrTargetUserNotFound
		}
		return "", fmt.Errorf("failed to resolve target user: %w", err)
	}

	role, err := s.roles.FindByName(ctx, roleName, tenant)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return "", ErrRoleNotFound
		}
		return "", fmt.Errorf("failed to resolve role: %w", err)
	}

	_, err = s.bindings.FindByUserAndRole(ctx, user.UserID, role.RoleID)
	switch {
	case err == nil:
		return "", ErrBindingExists
	case errors.Is(err, ErrBindingNotFound):
		return MsgValidateCreateRoleBinding, nil
	default:
		return "", fmt.Errorf("failed to look up role binding: %w", err)
	}
}

// CreateRoleBinding validates and persists a binding of (roleName, tenant)
// to userName. The store's uniqueness constraint on (user, role) is the
// authoritative duplicate signal; two concurrent creates race past the
// validation but only one insert wins.
func (s *Service) CreateRoleBinding(ctx context.Context, token, tenant, roleName, userName, description string) error {
	if _, err := s.ValidateCreateRoleBinding(ctx, token, tenant, roleName, userName); err != nil {
		return err
	}

	user, err := s.users.FindByName(ctx, userName)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return ErrTargetUserNotFound
		}
		return fmt.Errorf("failed to resolve target user: %w", err)
	}
	role, err := s.roles.FindByName(ctx, roleName, tenant)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to resolve role: %w", err)
	}

	binding := &RoleBinding{
		UserID:      user.UserID,
		RoleID:      role.RoleID,
		Name:        userName,
		Description: description,
	}
	if err := s.bindings.Save(ctx, binding); err != nil {
		if errors.Is(err, ErrBindingExists) {
			return ErrBindingExists
		}
		return fmt.Errorf("failed to save role binding: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeBindingCreated,
		Tenant:    tenant,
		ActorID:   user.UserID,
		ActorName: userName,
		Resource:  roleName,
	})

	return nil
}

// DeleteRoleBinding removes binding after confirming the acting user holds
// a binding to the same role.
func (s *Service) DeleteRoleBinding(ctx context.Context, token string, binding *RoleBinding) error {
	if _, err := s.ValidateCurrentUser(ctx, token, binding); err != nil {
		return err
	}

	if err := s.bindings.Delete(ctx, binding.RoleID, binding.UserID); err != nil {
		return fmt.Errorf("failed to delete role binding: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeBindingDeleted,
		ActorID:  binding.UserID,
		Resource: binding.Name,
	})

	return nil
}

// DeleteRoleBindingByName resolves (roleName, tenant) and userName to the
// underlying binding and removes it. The acting user must hold a binding to
// the same role.
func (s *Service) DeleteRoleBindingByName(ctx context.Context, token, tenant, roleName, userName string) error {
	user, err := s.users.FindByName(ctx, userName)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return ErrTargetUserNotFound
		}
		return fmt.Errorf("failed to resolve target user: %w", err)
	}
	role, err := s.roles.FindByName(ctx, roleName, tenant)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("failed to resolve role: %w", err)
	}

	binding, err := s.bindings.FindByUserAndRole(ctx, user.UserID, role.RoleID)
	if err != nil {
		if errors.Is(err, ErrBindingNotFound) {
			return ErrBindingNotFound
		}
		return fmt.Errorf("failed to look up role binding: %w", err)
	}

	return s.DeleteRoleBinding(ctx, token, binding)
}

// RoleBindingList retrieves the bindings for roles sourced from tenant,
// enriched with user and role names.
func (s *Service) RoleBindingList(ctx context.Context, tenant string) ([]*RoleBindingView, error) {
	views, err := s.bindings.ListByTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to list role bindings: %w", err)
	}
	return views, nil
}
