package access

import (
	"context"
	"errors"

	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"go.uber.org/zap"
)

// ProfileStore reads user profiles. Satisfied by *database.Queries and *docstore.Store.
type ProfileStore interface {
	GetUserByID(ctx context.Context, id string) (database.User, error)
}

// RoleCache memoizes resolved roles. Satisfied by *cache.RoleCache.
type RoleCache interface {
	GetRole(ctx context.Context, userID string) (enum.Role, bool, error)
	SetRole(ctx context.Context, userID string, role enum.Role) error
	InvalidateRole(ctx context.Context, userID string) error
}

// Resolver turns a verified identity into a Session with its role.
type Resolver struct {
	profiles ProfileStore
	cache    RoleCache
	log      *zap.Logger
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(profiles ProfileStore, cache RoleCache, log *zap.Logger) *Resolver {
	return &Resolver{profiles: profiles, cache: cache, log: log}
}

// Resolve never fails: a missing, inactive or unreadable profile resolves to
// the default role.
func (r *Resolver) Resolve(ctx context.Context, userID, email string) *Session {
	return &Session{UserID: userID, Email: email, Role: r.role(ctx, userID)}
}

func (r *Resolver) role(ctx context.Context, userID string) enum.Role {
	if r.cache != nil {
		role, ok, err := r.cache.GetRole(ctx, userID)
		if err != nil {
			r.log.Warn("role cache read failed", zap.String("user_id", userID), zap.Error(err))
		} else if ok {
			return role
		}
	}

	u, err := r.profiles.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			r.log.Error("read user profile", zap.String("user_id", userID), zap.Error(err))
			return enum.DefaultRole
		}
		u = database.User{Role: enum.DefaultRole, IsActive: true}
	}

	role := u.Role
	if !u.IsActive || !role.Valid() {
		role = enum.DefaultRole
	}

	if r.cache != nil {
		if err := r.cache.SetRole(ctx, userID, role); err != nil {
			r.log.Warn("role cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return role
}

// Forget drops a cached role after it changes.
func (r *Resolver) Forget(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateRole(ctx, userID); err != nil {
		r.log.Warn("role cache invalidate failed", zap.String("user_id", userID), zap.Error(err))
	}
}
