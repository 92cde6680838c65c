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
	"github.com/mqconsole/mqconsole/internal/rbac"
)

// RoleBindingRepository implements rbac.RoleBindingRepository
type RoleBindingRepository struct {
	db *DB
}

// NewRoleBindingRepository creates a new role binding repository
func NewRoleBindingRepository(db *DB) *RoleBindingRepository {
	return &RoleBindingRepository{db: db}
}

// FindByUserAndRole retrieves the binding for a (user, role) pair
func (r *RoleBindingRepository) FindByUserAndRole(ctx context.Context, userID, roleID int64) (*rbac.RoleBinding, error) {
	var binding rbac.RoleBinding

	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, role_id, name, description
		FROM role_bindings
		WHERE user_id = $1 AND role_id = $2
	`, userID, roleID).Scan(
		&binding.UserID, &binding.RoleID, &binding.Name, &binding.Description,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, rbac.ErrBindingNotFound
		}
		return nil, fmt.Errorf("failed to get role binding: %w", err)
	}

	return &binding, nil
}

// Save inserts a new binding. The primary key on (user_id, role_id) yields
// rbac.ErrBindingExists on collision, which closes the validate-then-insert
// race between concurrent writers.
func (r *RoleBindingRepository) Save(ctx context.Context, binding *rbac.RoleBinding) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO role_bindings (user_id, role_id, name, description)
		VALUES ($1, $2, $3, $4)
	`,
		binding.UserID, binding.RoleID, binding.Name, binding.Description,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return rbac.ErrBindingExists
		}
		return fmt.Errorf("failed to insert role binding: %w", err)
	}

	return nil
}

// Delete removes the binding for a (role, user) pair
func (r *RoleBindingRepository) Delete(ctx context.Context, roleID, userID int64) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM role_bindings WHERE role_id = $1 AND user_id = $2
	`, roleID, userID)

	if err != nil {
		return fmt.Errorf("failed to delete role binding: %w", err)
	}

	if result.RowsAffected() == 0 {
		return rbac.ErrBindingNotFound
	}

	return nil
}

// ListByTenant retrieves bindings for roles sourced from a tenant,
// enriched with user and role names.
func (r *RoleBindingRepository) ListByTenant(ctx context.Context, tenant string) ([]*rbac.RoleBindingView, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT b.name, b.description, b.user_id, u.name, b.role_id, r.role_name
		FROM role_bindings b
		JOIN users u ON u.user_id = b.user_id
		JOIN roles r ON r.role_id = b.role_id
		WHERE r.role_source = $1
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to list role bindings: %w", err)
	}
	defer rows.Close()

	var views []*rbac.RoleBindingView
	for rows.Next() {
		var v rbac.RoleBindingView
		if err := rows.Scan(&v.Name, &v.Description, &v.UserID, &v.UserName, &v.RoleID, &v.RoleName); err != nil {
			return nil, fmt.Errorf("failed to scan role binding: %w", err)
		}
		views = append(views, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate role bindings: %w", err)
	}

	return views, nil
}
