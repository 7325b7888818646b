package service

import (
	"context"
	"taskmanager/internal/models/analytics"
	"taskmanager/internal/models/task"
	"taskmanager/internal/models/user"
	"time"

	"github.com/google/uuid"
)

type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Insert(ctx context.Context, t *task.Task) error
	FindByID(ctx context.Context, id, owner uuid.UUID) (*task.Task, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, filter task.Filter, page task.Page) ([]*task.Task, error)
	Update(ctx context.Context, id, owner uuid.UUID, patch task.Patch, now time.Time) (*task.Task, error)
	Delete(ctx context.Context, id, owner uuid.UUID) (bool, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)
}

type AnalyticsRepository interface {
	StatusCounts(ctx context.Context, owner uuid.UUID) (analytics.Counts, error)
	DailyTrend(ctx context.Context, owner uuid.UUID, since time.Time) ([]analytics.DayTrend, error)
}
