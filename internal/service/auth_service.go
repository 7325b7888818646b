package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskmanager/internal/auth"
	"taskmanager/internal/logger"
	"taskmanager/internal/models/user"
	repo "taskmanager/internal/repository"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult - пользователь и выданный ему токен
type AuthResult struct {
	User  *user.User
	Token string
}

type AuthService struct {
	users  UserRepository
	tokens TokenIssuer
	hasher PasswordHasher
	now    func() time.Time
}

func NewAuthService(users UserRepository, tokens TokenIssuer, hasher PasswordHasher, opts ...Option) *AuthService {
	s := applyOptions(opts)
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		now:    s.now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	exists, err := s.users.UserExists(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("проверка пользователя: %w", err)
	}
	if exists {
		logger.Info("Service: Пользователь уже существует", zap.String("username", username))
		return nil, NewConflict("User already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, NewConflict("User already exists")
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("user_id", u.ID.String()))
	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewUnauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			logger.Warn("Service: Ошибка проверки пароля", zap.String("user_id", u.ID.String()), zap.Error(err))
		}
		return nil, NewUnauthorized("Invalid credentials")
	}

	token, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) issue(u *user.User) (string, error) {
	token, err := s.tokens.Issue(auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	})
	if err != nil {
		return "", fmt.Errorf("выпуск токена: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
