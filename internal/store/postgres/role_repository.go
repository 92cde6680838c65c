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

// RoleRepository implements rbac.RoleRepository
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindByName retrieves a role by name within a tenant source
func (r *RoleRepository) FindByName(ctx context.Context, name, source string) (*rbac.Role, error) {
	var role rbac.Role

	err := r.db.pool.QueryRow(ctx, `
		SELECT role_id, role_name, role_source, resource_id,
			resource_name, resource_type, resource_verbs, flag
		FROM roles
		WHERE role_name = $1 AND role_source = $2
	`, name, source).Scan(
		&role.RoleID, &role.RoleName, &role.RoleSource, &role.ResourceID,
		&role.ResourceName, &role.ResourceType, &role.ResourceVerbs, &role.Flag,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

// Save inserts a new role and returns the generated identifier. The unique
// index on (role_name, role_source) yields rbac.ErrRoleExists on collision.
func (r *RoleRepository) Save(ctx context.Context, role *rbac.Role) (int64, error) {
	var id int64

	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO roles (
			role_name, role_source, resource_id,
			resource_name, resource_type, resource_verbs, flag
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING role_id
	`,
		role.RoleName, role.RoleSource, role.ResourceID,
		role.ResourceName, role.ResourceType, role.ResourceVerbs, role.Flag,
	).Scan(&id)

	if err != nil {
		if isUniqueViolation(err) {
			return 0, rbac.ErrRoleExists
		}
		return 0, fmt.Errorf("failed to insert role: %w", err)
	}

	role.RoleID = id
	return id, nil
}

// Delete removes a role by name and tenant source
func (r *RoleRepository) Delete(ctx context.Context, name, source string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM roles WHERE role_name = $1 AND role_source = $2
	`, name, source)

	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}

	return nil
}
