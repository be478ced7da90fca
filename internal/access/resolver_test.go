package access

import (
	"context"
	"errors"
	"testing"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"go.uber.org/zap"
)

type mockProfileStore struct {
	calls     int
	getUserFn func(ctx context.Context, id string) (database.User, error)
}

func (m *mockProfileStore) GetUserByID(ctx context.Context, id string) (database.User, error) {
	m.calls++
	return m.getUserFn(ctx, id)
}

type mockRoleCache struct {
	roles  map[string]enum.Role
	getErr error
}

func newMockRoleCache() *mockRoleCache {
	return &mockRoleCache{roles: make(map[string]enum.Role)}
}

func (m *mockRoleCache) GetRole(_ context.Context, userID string) (enum.Role, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	r, ok := m.roles[userID]
	return r, ok, nil
}

func (m *mockRoleCache) SetRole(_ context.Context, userID string, role enum.Role) error {
	m.roles[userID] = role
	return nil
}

func (m *mockRoleCache) InvalidateRole(_ context.Context, userID string) error {
	delete(m.roles, userID)
	return nil
}

func profile(role enum.Role, active bool) func(context.Context, string) (database.User, error) {
	return func(_ context.Context, id string) (database.User, error) {
		return database.User{ID: id, Role: role, IsActive: active}, nil
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		getFn func(context.Context, string) (database.User, error)
		want  enum.Role
	}{
		{"kitchen profile", profile(enum.RoleKitchen, true), enum.RoleKitchen},
		{"inactive profile", profile(enum.RoleAdmin, false), enum.RoleCustomer},
		{"invalid stored role", profile(enum.Role("owner"), true), enum.RoleCustomer},
		{"missing profile", func(context.Context, string) (database.User, error) {
			return database.User{}, database.ErrNotFound
		}, enum.RoleCustomer},
		{"store error", func(context.Context, string) (database.User, error) {
			return database.User{}, errors.New("unavailable")
		}, enum.RoleCustomer},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(&mockProfileStore{getUserFn: tc.getFn}, nil, zap.NewNop())
			s := r.Resolve(context.Background(), "u1", "u1@casanala.mx")
			if s.Role != tc.want {
				t.Errorf("role = %s, want %s", s.Role, tc.want)
			}
			if s.UserID != "u1" || s.Email != "u1@casanala.mx" {
				t.Errorf("session = %+v", s)
			}
		})
	}
}

func TestResolveUsesCache(t *testing.T) {
	store := &mockProfileStore{getUserFn: profile(enum.RoleWaiter, true)}
	c := newMockRoleCache()
	r := NewResolver(store, c, zap.NewNop())
	ctx := context.Background()

	if s := r.Resolve(ctx, "u1", ""); s.Role != enum.RoleWaiter {
		t.Fatalf("role = %s", s.Role)
	}
	if s := r.Resolve(ctx, "u1", ""); s.Role != enum.RoleWaiter {
		t.Fatalf("cached role = %s", s.Role)
	}
	if store.calls != 1 {
		t.Errorf("profile reads = %d, want 1", store.calls)
	}

	r.Forget(ctx, "u1")
	r.Resolve(ctx, "u1", "")
	if store.calls != 2 {
		t.Errorf("profile reads after forget = %d, want 2", store.calls)
	}
}

func TestResolveStoreErrorIsNotCached(t *testing.T) {
	store := &mockProfileStore{getUserFn: func(context.Context, string) (database.User, error) {
		return database.User{}, errors.New("unavailable")
	}}
	c := newMockRoleCache()
	r := NewResolver(store, c, zap.NewNop())

	r.Resolve(context.Background(), "u1", "")
	if _, ok := c.roles["u1"]; ok {
		t.Error("a transient failure should not be cached")
	}
}

func TestResolveCacheErrorFallsBackToStore(t *testing.T) {
	store := &mockProfileStore{getUserFn: profile(enum.RoleAdmin, true)}
	c := newMockRoleCache()
	c.getErr = errors.New("redis down")
	r := NewResolver(store, c, zap.NewNop())

	if s := r.Resolve(context.Background(), "u1", ""); s.Role != enum.RoleAdmin {
		t.Errorf("role = %s", s.Role)
	}
}
