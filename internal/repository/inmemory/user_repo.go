package inmemory

import (
	"context"
	"strings"
	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"
	"time"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return repo.ErrDuplicate
		}
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) UserExists(ctx context.Context, email, username string) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}
