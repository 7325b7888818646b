package postgres

import (
	"context"
	"fmt"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/user"
	"time"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("create user", start)

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	query := `INSERT INTO users (id, username, email, password_hash, role, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		err = mapError(err)
		logger.Error("Repository: Не удалось создать пользователя", err)
		return fmt.Errorf("создание пользователя: %w", err)
	}
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer warnIfSlow("get user", start)

	query := `SELECT id, username, email, password_hash, role, created_at
				FROM users
				WHERE email = $1`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		err = mapError(err)
		if !isNotFound(err) {
			logger.Error("Repository: Не удалось получить пользователя", err)
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *Storage) UserExists(ctx context.Context, email, username string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		email, username,
	).Scan(&exists)
	if err != nil {
		logger.Error("Repository: Не удалось проверить пользователя", err)
		return false, fmt.Errorf("проверка пользователя: %w", err)
	}
	return exists, nil
}
