package inmemory

import (
	"context"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

type UserRepo struct {
	s *Storage
}

func NewUserRepo(s *Storage) *UserRepo {
	return &UserRepo{s: s}
}

func copyUser(u *repository.User) *repository.User {
	c := *u
	return &c
}

func (r *UserRepo) Create(ctx context.Context, user *repository.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	user.ID = newID()
	user.CreatedAt, user.UpdatedAt = now, now
	user.LastActiveAt = &now
	r.s.Users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if u, ok := r.s.Users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.Users {
		if sameEmail(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var users []*repository.User
	for _, id := range ids {
		if u, ok := r.s.Users[id]; ok {
			users = append(users, copyUser(u))
		}
	}
	return users, nil
}

func (r *UserRepo) Update(ctx context.Context, user *repository.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.Users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = r.s.now()
	r.s.Users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepo) UpdateLastActive(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.Users[userID]; ok {
		now := r.s.now()
		u.LastActiveAt = &now
	}
	return nil
}

func (r *UserRepo) SaveRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	token.ID = newID()
	token.CreatedAt = r.s.now()
	c := *token
	r.s.RefreshTokens[token.Token] = &c
	return nil
}

func (r *UserRepo) FindRefreshToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if rt, ok := r.s.RefreshTokens[token]; ok {
		c := *rt
		return &c, nil
	}
	return nil, nil
}

func (r *UserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.RefreshTokens, token)
	return nil
}

func (r *UserRepo) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for k, rt := range r.s.RefreshTokens {
		if rt.ExpiresAt.Before(before) {
			delete(r.s.RefreshTokens, k)
			n++
		}
	}
	return n, nil
}
