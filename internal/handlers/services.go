package handlers

import (
	"context"
	"taskmanager/internal/models/analytics"
	"taskmanager/internal/models/task"
	"taskmanager/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, owner uuid.UUID, in service.CreateTaskInput) (*task.Task, error)
	GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, owner uuid.UUID, in service.ListTasksInput) ([]*task.Task, error)
	UpdateTask(ctx context.Context, owner, id uuid.UUID, in service.UpdateTaskInput) (*task.Task, error)
	DeleteTask(ctx context.Context, owner, id uuid.UUID) error
}

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
}

type AnalyticsService interface {
	Dashboard(ctx context.Context, owner uuid.UUID) (analytics.Summary, error)
	Trends(ctx context.Context, owner uuid.UUID) ([]analytics.DayTrend, error)
}
