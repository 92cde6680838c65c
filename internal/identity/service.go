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

package identity

import (
	"context"
	"fmt"

	"github.com/mqconsole/mqconsole/internal/audit"
)

// Service provides identity-related business logic
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new identity service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// Provision creates a new local account
func (s *Service) Provision(ctx context.Context, user *User) (*User, error) {
	existing, err := s.repo.FindByName(ctx, user.Name)
	if err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	id, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.UserID = id

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeUserCreated,
		ActorID:   user.UserID,
		ActorName: user.Name,
		Resource:  "user",
	})

	return user, nil
}

// GetByName retrieves a user by account name
func (s *Service) GetByName(ctx context.Context, name string) (*User, error) {
	return s.repo.FindByName(ctx, name)
}

// GetByToken resolves a session token to its user. A token that does not
// match any stored AccessToken yields ErrUserNotFound.
func (s *Service) GetByToken(ctx context.Context, token string) (*User, error) {
	return s.repo.FindByToken(ctx, token)
}

// Delete removes a user by name. Role bindings are not cascaded; callers
// remove bindings first.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:      audit.TypeUserDeleted,
		ActorName: name,
		Resource:  "user",
	})

	return nil
}
