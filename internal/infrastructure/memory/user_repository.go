// Package memory holds the in-process stores the site runs on. Each store is
// an explicit object constructed at startup and guarded by its own mutex.
package memory

import (
	"context"
	"sync"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

// UserRepository keeps users and credentials in memory.
type UserRepository struct {
	mu          sync.RWMutex
	users       []*domain.User
	credentials map[string]domain.Credential
}

func NewUserRepository() *UserRepository {
	return &UserRepository{credentials: make(map[string]domain.Credential)}
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Credential(_ context.Context, username string) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.credentials[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &cred, nil
}

// Create checks username then email uniqueness (both case-sensitive) and
// stores the user and credential under one lock.
func (r *UserRepository) Create(_ context.Context, user *domain.User, cred domain.Credential) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrDuplicateUsername
		}
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}

	stored := cloneUser(user)
	r.users = append(r.users, stored)
	cred.Username = stored.Username
	r.credentials[stored.Username] = cred
	return cloneUser(stored), nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}
