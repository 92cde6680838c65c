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
)

// Validation errors. The strings are part of the API contract: the
// transport layer returns them verbatim in the "error" field and the
// console UI matches on them.
var (
	ErrActingUserNotFound = errors.New("User no exist.")
	ErrIllegalOperation   = errors.New("This operation is illegal for this user")
	ErrTargetUserNotFound = errors.New("The user is not exist")
	ErrRoleNotFound       = errors.New("This role is no exist")
	ErrBindingExists      = errors.New("Role binding already exist")
)

// Internal errors, not surfaced through the validation API
var (
	ErrRoleExists      = errors.New("role already exists")
	ErrBindingNotFound = errors.New("role binding not found")
)

// Success messages returned by the validation operations
const (
	MsgValidateCurrentUser       = "Validate current user success"
	MsgValidateCreateRoleBinding = "Validate create role success"
)

// ResourceType identifies the kind of cluster resource a role is scoped to
type ResourceType string

const (
	ResourceTypeTenants    ResourceType = "TENANTS"
	ResourceTypeNamespaces ResourceType = "NAMESPACES"
	ResourceTypeTopics     ResourceType = "TOPICS"
	ResourceTypeAll        ResourceType = "ALL"
)

// ResourceVerb is the set of actions a role grants on its resource
type ResourceVerb string

const (
	VerbAdmin     ResourceVerb = "ADMIN"
	VerbProduce   ResourceVerb = "PRODUCE"
	VerbConsume   ResourceVerb = "CONSUME"
	VerbFunctions ResourceVerb = "FUNCTIONS"
)

// Role is a named permission scoped to one resource instance. RoleName is
// unique per RoleSource (the owning tenant), not globally.
type Role struct {
	RoleID        int64
	RoleName      string
	RoleSource    string
	ResourceID    int64
	ResourceName  string
	ResourceType  ResourceType
	ResourceVerbs ResourceVerb
	Flag          int32
}

// RoleBinding assigns a Role to a User. At most one binding exists per
// (UserID, RoleID) pair.
type RoleBinding struct {
	UserID      int64
	RoleID      int64
	Name        string
	Description string
}

// RoleBindingView is a binding enriched with user and role names for
// tenant-scoped listings.
type RoleBindingView struct {
	Name        string
	Description string
	UserID      int64
	UserName    string
	RoleID      int64
	RoleName    string
}

// RoleRepository defines the interface for role persistence
type RoleRepository interface {
	// FindByName retrieves a role by name within a tenant source
	FindByName(ctx context.Context, name, source string) (*Role, error)

	// Save inserts a new role and returns the generated identifier.
	// A (RoleName, RoleSource) collision yields ErrRoleExists.
	Save(ctx context.Context, role *Role) (int64, error)

	// Delete removes a role by name and tenant source
	Delete(ctx context.Context, name, source string) error
}

// RoleBindingRepository defines the interface for role binding persistence
type RoleBindingRepository interface {
	// FindByUserAndRole retrieves the binding for a (user, role) pair
	FindByUserAndRole(ctx context.Context, userID, roleID int64) (*RoleBinding, error)

	// Save inserts a new binding. A (UserID, RoleID) collision yields
	// ErrBindingExists; the store constraint is authoritative, not any
	// prior existence check.
	Save(ctx context.Context, binding *RoleBinding) error

	// Delete removes the binding for a (role, user) pair
	Delete(ctx context.Context, roleID, userID int64) error

	// ListByTenant retrieves bindings for roles sourced from a tenant,
	// enriched with user and role names
	ListByTenant(ctx context.Context, tenant string) ([]*RoleBindingView, error)
}
