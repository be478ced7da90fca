package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MarcusAlienx/casanala/internal/database"
	"github.com/MarcusAlienx/casanala/internal/enum"
	"github.com/google/uuid"
)

type userDoc struct {
	Email          string    `firestore:"email"`
	EmailLower     string    `firestore:"emailLower"`
	HashedPassword string    `firestore:"hashedPassword"`
	FullName       string    `firestore:"fullName"`
	Role           string    `firestore:"role"`
	IsActive       bool      `firestore:"isActive"`
	CreatedAt      time.Time `firestore:"createdAt,serverTimestamp"`
}

func userFromSnapshot(snap *firestore.DocumentSnapshot) (database.User, error) {
	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return database.User{}, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	return database.User{
		ID:             snap.Ref.ID,
		Email:          d.Email,
		HashedPassword: d.HashedPassword,
		FullName:       d.FullName,
		Role:           enum.Role(d.Role),
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
	}, nil
}

func (s *Store) users() *firestore.CollectionRef {
	return s.client.Collection(usersCollection)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (database.User, error) {
	snap, err := s.users().Doc(id).Get(ctx)
	if err != nil {
		return database.User{}, translate(err)
	}
	return userFromSnapshot(snap)
}

// GetUserByEmail matches case-insensitively and only returns active users.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	snaps, err := s.users().
		Where("emailLower", "==", strings.ToLower(strings.TrimSpace(email))).
		Where("isActive", "==", true).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return database.User{}, translate(err)
	}
	if len(snaps) == 0 {
		return database.User{}, database.ErrNotFound
	}
	return userFromSnapshot(snaps[0])
}

func (s *Store) ListUsers(ctx context.Context) ([]database.User, error) {
	snaps, err := s.users().Where("isActive", "==", true).OrderBy("fullName", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, translate(err)
	}
	users := make([]database.User, 0, len(snaps))
	for _, snap := range snaps {
		u, err := userFromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// CreateUser rejects a second profile with the same email inside a transaction.
func (s *Store) CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
	ref := s.users().Doc(uuid.NewString())
	lower := strings.ToLower(strings.TrimSpace(arg.Email))

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(s.users().Where("emailLower", "==", lower).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return database.ErrDuplicate
		}
		return tx.Create(ref, userDoc{
			Email:          arg.Email,
			EmailLower:     lower,
			HashedPassword: arg.HashedPassword,
			FullName:       arg.FullName,
			Role:           string(arg.Role),
			IsActive:       true,
		})
	})
	if err != nil {
		return database.User{}, translate(err)
	}
	return s.GetUserByID(ctx, ref.ID)
}

func (s *Store) UpdateUserRole(ctx context.Context, arg database.UpdateUserRoleParams) (database.User, error) {
	u, err := s.GetUserByID(ctx, arg.ID)
	if err != nil {
		return database.User{}, err
	}
	if !u.IsActive {
		return database.User{}, database.ErrNotFound
	}
	_, err = s.users().Doc(arg.ID).Update(ctx, []firestore.Update{{Path: "role", Value: string(arg.Role)}})
	if err != nil {
		return database.User{}, translate(err)
	}
	u.Role = arg.Role
	return u, nil
}
