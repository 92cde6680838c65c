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

package rbac_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mqconsole/mqconsole/internal/audit"
	"github.com/mqconsole/mqconsole/internal/identity"
	"github.com/mqconsole/mqconsole/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockUserRepository implements identity.Repository for testing
type MockUserRepository struct {
	users  map[string]*identity.User
	nextID int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*identity.User), nextID: 1}
}

func (m *MockUserRepository) FindByName(ctx context.Context, name string) (*identity.User, error) {
	if u, ok := m.users[name]; ok {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (m *MockUserRepository) FindByToken(ctx context.Context, token string) (*identity.User, error) {
	for _, u := range m.users {
		if u.AccessToken == token {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) (int64, error) {
	id := m.nextID
	m.nextID++
	u := *user
	u.UserID = id
	m.users[user.Name] = &u
	return id, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	m.users[user.Name] = user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, name string) error {
	delete(m.users, name)
	return nil
}

// MockRoleRepository implements rbac.RoleRepository for testing
type MockRoleRepository struct {
	roles  map[string]*rbac.Role // keyed by name/source
	nextID int64
}

func NewMockRoleRepository() *MockRoleRepository {
	return &MockRoleRepository{roles: make(map[string]*rbac.Role), nextID: 1}
}

func roleKey(name, source string) string { return name + "/" + source }

func (m *MockRoleRepository) FindByName(ctx context.Context, name, source string) (*rbac.Role, error) {
	if r, ok := m.roles[roleKey(name, source)]; ok {
		return r, nil
	}
	return nil, rbac.ErrRoleNotFound
}

func (m *MockRoleRepository) Save(ctx context.Context, role *rbac.Role) (int64, error) {
	key := roleKey(role.RoleName, role.RoleSource)
	if _, ok := m.roles[key]; ok {
		return 0, rbac.ErrRoleExists
	}
	id := m.nextID
	m.nextID++
	r := *role
	r.RoleID = id
	m.roles[key] = &r
	return id, nil
}

func (m *MockRoleRepository) Delete(ctx context.Context, name, source string) error {
	delete(m.roles, roleKey(name, source))
	return nil
}

// MockBindingRepository implements rbac.RoleBindingRepository for testing
type MockBindingRepository struct {
	bindings []*rbac.RoleBinding
	users    *MockUserRepository
	roles    *MockRoleRepository
}

func NewMockBindingRepository(users *MockUserRepository, roles *MockRoleRepository) *MockBindingRepository {
	return &MockBindingRepository{users: users, roles: roles}
}

func (m *MockBindingRepository) FindByUserAndRole(ctx context.Context, userID, roleID int64) (*rbac.RoleBinding, error) {
	for _, b := range m.bindings {
		if b.UserID == userID && b.RoleID == roleID {
			return b, nil
		}
	}
	return nil, rbac.ErrBindingNotFound
}

func (m *MockBindingRepository) Save(ctx context.Context, binding *rbac.RoleBinding) error {
	for _, b := range m.bindings {
		if b.UserID == binding.UserID && b.RoleID == binding.RoleID {
			return rbac.ErrBindingExists
		}
	}
	m.bindings = append(m.bindings, binding)
	return nil
}

func (m *MockBindingRepository) Delete(ctx context.Context, roleID, userID int64) error {
	for i, b := range m.bindings {
		if b.RoleID == roleID && b.UserID == userID {
			m.bindings = append(m.bindings[:i], m.bindings[i+1:]...)
			return nil
		}
	}
	return rbac.ErrBindingNotFound
}

func (m *MockBindingRepository) ListByTenant(ctx context.Context, tenant string) ([]*rbac.RoleBindingView, error) {
	var views []*rbac.RoleBindingView
	for _, b := range m.bindings {
		for _, r := range m.roles.roles {
			if r.RoleID != b.RoleID || r.RoleSource != tenant {
				continue
			}
			view := &rbac.RoleBindingView{
				Name:        b.Name,
				Description: b.Description,
				UserID:      b.UserID,
				RoleID:      b.RoleID,
				RoleName:    r.RoleName,
			}
			for _, u := range m.users.users {
				if u.UserID == b.UserID {
					view.UserName = u.Name
				}
			}
			views = append(views, view)
		}
	}
	return views, nil
}

func newFixture() (*rbac.Service, *MockUserRepository, *MockRoleRepository, *MockBindingRepository) {
	users := NewMockUserRepository()
	roles := NewMockRoleRepository()
	bindings := NewMockBindingRepository(users, roles)
	svc := rbac.NewService(users, roles, bindings, audit.NewSlogLogger())
	return svc, users, roles, bindings
}

func TestRBAC_ValidateCurrentUser(t *testing.T) {
	svc, users, roles, bindings := newFixture()
	ctx := context.Background()

	userID, err := users.Save(ctx, &identity.User{Name: "test-user", AccessToken: "test-access-token"})
	require.NoError(t, err)

	binding := &rbac.RoleBinding{}

	// Unknown token resolves to no user regardless of the rest of the request
	_, err = svc.ValidateCurrentUser(ctx, "test-error-access-token", binding)
	assert.EqualError(t, err, "User no exist.")

	roleID, err := roles.Save(ctx, &rbac.Role{
		RoleName:      "test-role",
		RoleSource:    "test-tenant",
		ResourceID:    1,
		Flag:          1,
		ResourceName:  "test-tenant-resource",
		ResourceType:  rbac.ResourceTypeTenants,
		ResourceVerbs: rbac.VerbAdmin,
	})
	require.NoError(t, err)

	require.NoError(t, bindings.Save(ctx, &rbac.RoleBinding{
		UserID:      userID,
		RoleID:      roleID,
		Name:        "test-role-binding",
		Description: "test-role-binding-description",
	}))

	// Valid user, but no binding to the requested role
	binding.RoleID = roleID + 9
	_, err = svc.ValidateCurrentUser(ctx, "test-access-token", binding)
	assert.EqualError(t, err, "This operation is illegal for this user")

	// Valid user holding the binding
	binding.RoleID = roleID
	msg, err := svc.ValidateCurrentUser(ctx, "test-access-token", binding)
	require.NoError(t, err)
	assert.Equal(t, "Validate current user success", msg)
}

// The verb set is never consulted: any binding to the role authorizes the
// user, ADMIN or not.
func TestRBAC_ValidateCurrentUser_IgnoresVerbs(t *testing.T) {
	svc, users, roles, bindings := newFixture()
	ctx := context.Background()

	userID, _ := users.Save(ctx, &identity.User{Name: "consumer", AccessToken: "consumer-token"})
	roleID, _ := roles.Save(ctx, &rbac.Role{
		RoleName:      "readonly",
		RoleSource:    "tenantA",
		ResourceType:  rbac.ResourceTypeNamespaces,
		ResourceVerbs: rbac.VerbConsume,
	})
	require.NoError(t, bindings.Save(ctx, &rbac.RoleBinding{UserID: userID, RoleID: roleID, Name: "consumer"}))

	msg, err := svc.ValidateCurrentUser(ctx, "consumer-token", &rbac.RoleBinding{RoleID: roleID})
	require.NoError(t, err)
	assert.Equal(t, rbac.MsgValidateCurrentUser, msg)
}

func TestRBAC_ValidateCreateRoleBinding_Precedence(t *testing.T) {
	svc, users, roles, bindings := newFixture()
	ctx := context.Background()

	userID, err := users.Save(ctx, &identity.User{Name: "test-user", AccessToken: "test-access-token"})
	require.NoError(t, err)

	roleID, err := roles.Save(ctx, &rbac.Role{
		RoleName:      "test-role",
		RoleSource:    "test-tenant",
		ResourceID:    1,
		Flag:          1,
		ResourceName:  "test-tenant-resource",
		ResourceType:  rbac.ResourceTypeTenants,
		ResourceVerbs: rbac.VerbAdmin,
	})
	require.NoError(t, err)

	require.NoError(t, bindings.Save(ctx, &rbac.RoleBinding{
		UserID: userID,
		RoleID: roleID,
		Name:   "test-role-binding",
	}))

	// Missing user wins even when the role is missing too
	_, err = svc.ValidateCreateRoleBinding(ctx, "test-access-token", "test-error-tenant", "test-error-role", "test-user-name")
	assert.EqualError(t, err, "The user is not exist")

	// Existing user, missing role: role error wins over the duplicate check
	_, err = svc.ValidateCreateRoleBinding(ctx, "test-access-token", "test-tenant", "test-error-role", "test-user")
	assert.EqualError(t, err, "This role is no exist")

	// User and role both exist but the binding is already present
	_, err = svc.ValidateCreateRoleBinding(ctx, "test-access-token", "test-tenant", "test-role", "test-user")
	assert.EqualError(t, err, "Role binding already exist")

	// A second role with no binding validates cleanly
	_, err = roles.Save(ctx, &rbac.Role{
		RoleName:     "test-no-binding-role",
		RoleSource:   "test-tenant",
		ResourceType: rbac.ResourceTypeTenants,
	})
	require.NoError(t, err)

	msg, err := svc.ValidateCreateRoleBinding(ctx, "test-access-token", "test-tenant", "test-no-binding-role", "test-user")
	require.NoError(t, err)
	assert.Equal(t, "Validate create role success", msg)
}

func TestRBAC_CreateRoleBinding_ThenDuplicate(t *testing.T) {
	svc, users, roles, _ := newFixture()
	ctx := context.Background()

	_, err := users.Save(ctx, &identity.User{Name: "bob", AccessToken: "token-of-bob"})
	require.NoError(t, err)
	_, err = roles.Save(ctx, &rbac.Role{
		RoleName:      "ops",
		RoleSource:    "tenantA",
		ResourceType:  rbac.ResourceTypeTenants,
		ResourceVerbs: rbac.VerbAdmin,
	})
	require.NoError(t, err)

	msg, err := svc.ValidateCreateRoleBinding(ctx, "token-of-bob", "tenantA", "ops", "bob")
	require.NoError(t, err)
	assert.Equal(t, "Validate create role success", msg)

	require.NoError(t, svc.CreateRoleBinding(ctx, "token-of-bob", "tenantA", "ops", "bob", "bob ops binding"))

	// After persistence, the same request reports the duplicate
	_, err = svc.ValidateCreateRoleBinding(ctx, "token-of-bob", "tenantA", "ops", "bob")
	assert.ErrorIs(t, err, rbac.ErrBindingExists)

	err = svc.CreateRoleBinding(ctx, "token-of-bob", "tenantA", "ops", "bob", "bob ops binding")
	assert.ErrorIs(t, err, rbac.ErrBindingExists)
}

func TestRBAC_RoleBindingList(t *testing.T) {
	svc, users, roles, bindings := newFixture()
	ctx := context.Background()

	userID, _ := users.Save(ctx, &identity.User{Name: "test-user-binding", AccessToken: "test-access-token-binding"})
	roleID, _ := roles.Save(ctx, &rbac.Role{
		RoleName:      "test-role-binding",
		RoleSource:    "test-tenant-binding",
		ResourceType:  rbac.ResourceTypeTenants,
		ResourceVerbs: rbac.VerbAdmin,
	})
	require.NoError(t, bindings.Save(ctx, &rbac.RoleBinding{
		UserID:      userID,
		RoleID:      roleID,
		Name:        "test-role-binding",
		Description: "test-role-binding-description",
	}))

	views, err := svc.RoleBindingList(ctx, "test-tenant-binding")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "test-role-binding", views[0].Name)
	assert.Equal(t, userID, views[0].UserID)
	assert.Equal(t, "test-user-binding", views[0].UserName)
	assert.Equal(t, roleID, views[0].RoleID)
	assert.Equal(t, "test-role-binding", views[0].RoleName)
	assert.Equal(t, "test-role-binding-description", views[0].Description)

	// Cleanup ordering mirrors production: binding, role, user
	require.NoError(t, bindings.Delete(ctx, roleID, userID))
	require.NoError(t, roles.Delete(ctx, "test-role-binding", "test-tenant-binding"))
	require.NoError(t, users.Delete(ctx, "test-user-binding"))
}

// failingUserRepository simulates a store outage on every call
type failingUserRepository struct{ err error }

func (f *failingUserRepository) FindByName(ctx context.Context, name string) (*identity.User, error) {
	return nil, f.err
}

func (f *failingUserRepository) FindByToken(ctx context.Context, token string) (*identity.User, error) {
	return nil, f.err
}

func (f *failingUserRepository) Save(ctx context.Context, user *identity.User) (int64, error) {
	return 0, f.err
}

func (f *failingUserRepository) Update(ctx context.Context, user *identity.User) error {
	return f.err
}

func (f *failingUserRepository) Delete(ctx context.Context, name string) error {
	return f.err
}

// failingBindingRepository simulates a store outage on every call
type failingBindingRepository struct{ err error }

func (f *failingBindingRepository) FindByUserAndRole(ctx context.Context, userID, roleID int64) (*rbac.RoleBinding, error) {
	return nil, f.err
}

func (f *failingBindingRepository) Save(ctx context.Context, binding *rbac.RoleBinding) error {
	return f.err
}

func (f *failingBindingRepository) Delete(ctx context.Context, roleID, userID int64) error {
	return f.err
}

func (f *failingBindingRepository) ListByTenant(ctx context.Context, tenant string) ([]*rbac.RoleBindingView, error) {
	return nil, f.err
}

// A store outage must surface as an error, never as a validation verdict:
// "no such user" and "no such binding" are statements about the data, not
// about the database being reachable.
func TestRBAC_StoreFailureIsNotAVerdict(t *testing.T) {
	infra := errors.New("connection refused")
	ctx := context.Background()

	t.Run("user lookup outage", func(t *testing.T) {
		users := &failingUserRepository{err: infra}
		roles := NewMockRoleRepository()
		bindings := NewMockBindingRepository(NewMockUserRepository(), roles)
		svc := rbac.NewService(users, roles, bindings, audit.NewSlogLogger())

		_, err := svc.ValidateCurrentUser(ctx, "any-token", &rbac.RoleBinding{RoleID: 1})
		require.ErrorIs(t, err, infra)
		assert.NotErrorIs(t, err, rbac.ErrActingUserNotFound)

		_, err = svc.ValidateCreateRoleBinding(ctx, "any-token", "tenantA", "ops", "bob")
		require.ErrorIs(t, err, infra)
		assert.NotErrorIs(t, err, rbac.ErrTargetUserNotFound)
	})

	t.Run("binding lookup outage", func(t *testing.T) {
		users := NewMockUserRepository()
		roles := NewMockRoleRepository()
		svc := rbac.NewService(users, roles, &failingBindingRepository{err: infra}, audit.NewSlogLogger())

		_, err := users.Save(ctx, &identity.User{Name: "bob", AccessToken: "token-of-bob"})
		require.NoError(t, err)
		roleID, err := roles.Save(ctx, &rbac.Role{RoleName: "ops", RoleSource: "tenantA"})
		require.NoError(t, err)

		_, err = svc.ValidateCurrentUser(ctx, "token-of-bob", &rbac.RoleBinding{RoleID: roleID})
		require.ErrorIs(t, err, infra)
		assert.NotErrorIs(t, err, rbac.ErrIllegalOperation)

		// Neither a duplicate verdict nor a success message may come back
		msg, err := svc.ValidateCreateRoleBinding(ctx, "token-of-bob", "tenantA", "ops", "bob")
		require.ErrorIs(t, err, infra)
		assert.NotErrorIs(t, err, rbac.ErrBindingExists)
		assert.Empty(t, msg)
	})
}

func TestRBAC_DeleteRoleBinding(t *testing.T) {
	svc, users, roles, bindings := newFixture()
	ctx := context.Background()

	userID, _ := users.Save(ctx, &identity.User{Name: "test-user", AccessToken: "test-access-token"})
	roleID, _ := roles.Save(ctx, &rbac.Role{RoleName: "test-role", RoleSource: "test-tenant"})
	require.NoError(t, bindings.Save(ctx, &rbac.RoleBinding{UserID: userID, RoleID: roleID, Name: "test-user"}))

	// An unknown token cannot delete anything
	err := svc.DeleteRoleBinding(ctx, "test-error-access-token", &rbac.RoleBinding{UserID: userID, RoleID: roleID})
	assert.ErrorIs(t, err, rbac.ErrActingUserNotFound)

	require.NoError(t, svc.DeleteRoleBinding(ctx, "test-access-token", &rbac.RoleBinding{UserID: userID, RoleID: roleID}))

	_, err = bindings.FindByUserAndRole(ctx, userID, roleID)
	assert.ErrorIs(t, err, rbac.ErrBindingNotFound)
}
