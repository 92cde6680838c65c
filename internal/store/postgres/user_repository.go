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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mqconsole/mqconsole/internal/identity"
)

// UserRepository implements identity.Repository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByName retrieves a user by account name
func (r *UserRepository) FindByName(ctx context.Context, name string) (*identity.User, error) {
	var user identity.User

	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, name, access_token, email, company, location
		FROM users
		WHERE name = $1
	`, name).Scan(
		&user.UserID, &user.Name, &user.AccessToken,
		&user.Email, &user.Company, &user.Location,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// FindByToken retrieves a user by its current session token
func (r *UserRepository) FindByToken(ctx context.Context, token string) (*identity.User, error) {
	var user identity.User

	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, name, access_token, email, company, location
		FROM users
		WHERE access_token = $1
	`, token).Scan(
		&user.UserID, &user.Name, &user.AccessToken,
		&user.Email, &user.Company, &user.Location,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by token: %w", err)
	}

	return &user, nil
}

// Save inserts a new user and returns the generated identifier
func (r *UserRepository) Save(ctx context.Context, user *identity.User) (int64, error) {
	var id int64

	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO users (name, access_token, email, company, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id
	`,
		user.Name, user.AccessToken, user.Email, user.Company, user.Location,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, identity.ErrUserAlreadyExists
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	user.UserID = id
	return id, nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET
			access_token = $2,
			email = $3,
			company = $4,
			location = $5
		WHERE user_id = $1
	`,
		user.UserID, user.AccessToken, user.Email, user.Company, user.Location,
	)

	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}

// Delete removes a user by account name
func (r *UserRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM users WHERE name = $1
	`, name)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}

	return nil
}
