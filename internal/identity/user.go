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
	"errors"
)

// Domain errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// User represents a local console account. AccessToken holds the current
// session token; it is rotated on every login, so a stale token never
// resolves to a user.
type User struct {
	UserID      int64
	Name        string
	AccessToken string
	Email       string
	Company     string
	Location    string
}

// Repository defines the interface for user persistence
type Repository interface {
	// FindByName retrieves a user by account name
	FindByName(ctx context.Context, name string) (*User, error)

	// FindByToken retrieves a user by its current session token
	FindByToken(ctx context.Context, token string) (*User, error)

	// Save inserts a new user and returns the generated identifier
	Save(ctx context.Context, user *User) (int64, error)

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// Delete removes a user by account name
	Delete(ctx context.Context, name string) error
}
