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
	"testing"

	"github.com/mqconsole/mqconsole/internal/audit"
)

// MockRepository is a simple in-memory implementation of Repository
type MockRepository struct {
	users  map[string]*User
	nextID int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:  make(map[string]*User),
		nextID: 1,
	}
}

func (m *MockRepository) FindByName(ctx context.Context, name string) (*User, error) {
	u, ok := m.users[name]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *MockRepository) FindByToken(ctx context.Context, token string) (*User, error) {
	for _, u := range m.users {
		if u.AccessToken == token {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockRepository) Save(ctx context.Context, user *User) (int64, error) {
	if _, ok := m.users[user.Name]; ok {
		return 0, ErrUserAlreadyExists
	}
	id := m.nextID
	m.nextID++
	u := *user
	u.UserID = id
	m.users[user.Name] = &u
	return id, nil
}

func (m *MockRepository) Update(ctx context.Context, user *User) error {
	if _, ok := m.users[user.Name]; !ok {
		return ErrUserNotFound
	}
	u := *user
	m.users[user.Name] = &u
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, name string) error {
	if _, ok := m.users[name]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, name)
	return nil
}

func TestIdentity_Service_Provision(t *testing.T) {
	repo := NewMockRepository()
	s := NewService(repo, audit.NewSlogLogger())

	ctx := context.Background()

	user, err := s.Provision(ctx, &User{Name: "console-admin", Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("failed to provision: %v", err)
	}
	if user.UserID == 0 {
		t.Error("expected generated user ID")
	}

	// Second provision with the same name must fail
	_, err = s.Provision(ctx, &User{Name: "console-admin"})
	if err != ErrUserAlreadyExists {
		t.Errorf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestIdentity_Service_GetByToken(t *testing.T) {
	repo := NewMockRepository()
	s := NewService(repo, audit.NewSlogLogger())

	ctx := context.Background()

	user, err := s.Provision(ctx, &User{Name: "test-user", AccessToken: "test-access-token"})
	if err != nil {
		t.Fatalf("failed to provision: %v", err)
	}

	got, err := s.GetByToken(ctx, "test-access-token")
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if got.UserID != user.UserID {
		t.Errorf("expected user ID %d, got %d", user.UserID, got.UserID)
	}

	_, err = s.GetByToken(ctx, "test-error-access-token")
	if err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
