package service_test

import (
	"context"
	"errors"
	"strings"
	"taskmanager/internal/auth"
	"taskmanager/internal/models/analytics"
	"taskmanager/internal/models/task"
	"taskmanager/internal/models/user"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Insert(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id, owner uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByOwner(ctx context.Context, owner uuid.UUID, filter task.Filter, page task.Page) ([]*task.Task, error) {
	args := m.Called(ctx, owner, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, id, owner uuid.UUID, patch task.Patch, now time.Time) (*task.Task, error) {
	args := m.Called(ctx, id, owner, patch, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id, owner uuid.UUID) (bool, error) {
	args := m.Called(ctx, id, owner)
	return args.Bool(0), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UserExists(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

var _ service.UserRepository = (*MockUserRepository)(nil)

// MockAnalyticsRepository - мок репозитория аналитики
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) StatusCounts(ctx context.Context, owner uuid.UUID) (analytics.Counts, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(analytics.Counts), args.Error(1)
}

func (m *MockAnalyticsRepository) DailyTrend(ctx context.Context, owner uuid.UUID, since time.Time) ([]analytics.DayTrend, error) {
	args := m.Called(ctx, owner, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.DayTrend), args.Error(1)
}

var _ service.AnalyticsRepository = (*MockAnalyticsRepository)(nil)

func assertBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, code, busErr.Code)
}

func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			err := service.NewTaskService(mockRepo).HealthCheck(context.Background())
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name      string
		input     service.CreateTaskInput
		setupMock func(*MockTaskRepository)
		errCode   string
		check     func(*testing.T, *task.Task)
	}{
		{
			name:  "success - defaults",
			input: service.CreateTaskInput{Title: "  Write docs  "},
			setupMock: func(m *MockTaskRepository) {
				m.On("Insert", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)
			},
			check: func(t *testing.T, got *task.Task) {
				assert.Equal(t, "Write docs", got.Title)
				assert.Equal(t, owner, got.UserID)
				assert.Equal(t, task.StatusPending, got.Status)
				assert.Equal(t, task.PriorityMedium, got.Priority)
				assert.False(t, got.IsOverdue)
				assert.Nil(t, got.CompletedAt)
				assert.Equal(t, fixedNow, got.CreatedAt)
			},
		},
		{
			name: "success - completed with past deadline is not overdue",
			input: service.CreateTaskInput{
				Title:    "Done",
				Status:   "Completed",
				Priority: "High",
				Deadline: ptr(fixedNow.Add(-time.Hour)),
				Tags:     []string{"x"},
			},
			setupMock: func(m *MockTaskRepository) {
				m.On("Insert", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)
			},
			check: func(t *testing.T, got *task.Task) {
				assert.Equal(t, task.StatusCompleted, got.Status)
				assert.Equal(t, task.PriorityHigh, got.Priority)
				require.NotNil(t, got.CompletedAt)
				assert.Equal(t, fixedNow, *got.CompletedAt)
				assert.False(t, got.IsOverdue)
				assert.Equal(t, []string{"x"}, got.Tags)
			},
		},
		{
			name:      "error - blank title",
			input:     service.CreateTaskInput{Title: "   "},
			setupMock: func(m *MockTaskRepository) {},
			errCode:   service.CodeValidation,
		},
		{
			name:      "error - title too long",
			input:     service.CreateTaskInput{Title: strings.Repeat("a", task.MaxTitleLength+1)},
			setupMock: func(m *MockTaskRepository) {},
			errCode:   service.CodeValidation,
		},
		{
			name:      "error - unknown priority",
			input:     service.CreateTaskInput{Title: "t", Priority: "Urgent"},
			setupMock: func(m *MockTaskRepository) {},
			errCode:   service.CodeValidation,
		},
		{
			name:      "error - unknown status",
			input:     service.CreateTaskInput{Title: "t", Status: "Done"},
			setupMock: func(m *MockTaskRepository) {},
			errCode:   service.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)
			svc := service.NewTaskService(mockRepo, service.WithClock(clock))

			got, err := svc.CreateTask(context.Background(), owner, tt.input)
			if tt.errCode != "" {
				assertBusinessCode(t, err, tt.errCode)
				mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_CreateTask_RepoError(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := service.NewTaskService(mockRepo).CreateTask(context.Background(), uuid.New(), service.CreateTaskInput{Title: "t"})
	require.Error(t, err)

	var busErr *service.BusinessError
	assert.False(t, errors.As(err, &busErr))
}

func TestTaskService_GetTask(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("FindByID", mock.Anything, id, owner).Return(&task.Task{ID: id, UserID: owner}, nil)

		got, err := service.NewTaskService(mockRepo).GetTask(context.Background(), owner, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("not found masks foreign tasks", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("FindByID", mock.Anything, id, owner).Return(nil, repository.ErrNotFound)

		_, err := service.NewTaskService(mockRepo).GetTask(context.Background(), owner, id)
		assertBusinessCode(t, err, service.CodeNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("FindByID", mock.Anything, id, owner).Return(nil, errors.New("timeout"))

		_, err := service.NewTaskService(mockRepo).GetTask(context.Background(), owner, id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	owner := uuid.New()

	t.Run("filters and page", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		expectedFilter := task.Filter{
			Status:   ptr(task.StatusInProgress),
			Priority: ptr(task.PriorityLow),
			Search:   "milk",
		}
		mockRepo.On("ListByOwner", mock.Anything, owner, expectedFilter, task.Page{Number: 2, Limit: 10}).
			Return([]*task.Task{{Title: "a"}}, nil)

		tasks, err := service.NewTaskService(mockRepo).ListTasks(context.Background(), owner, service.ListTasksInput{
			Status:   "In Progress",
			Priority: "Low",
			Search:   " milk ",
			Page:     2,
			Limit:    10,
		})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
		mockRepo.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("ListByOwner", mock.Anything, owner, task.Filter{}, task.Page{Number: 1, Limit: task.DefaultPageLimit}).
			Return([]*task.Task{}, nil)

		_, err := service.NewTaskService(mockRepo).ListTasks(context.Background(), owner, service.ListTasksInput{})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("bad status", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		_, err := service.NewTaskService(mockRepo).ListTasks(context.Background(), owner, service.ListTasksInput{Status: "nope"})
		assertBusinessCode(t, err, service.CodeValidation)
	})
}

func TestTaskService_UpdateTask(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	t.Run("builds patch", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		expected := task.Patch{
			Title:  ptr("New title"),
			Status: ptr(task.StatusCompleted),
			Tags:   []string{"a"},
		}
		mockRepo.On("Update", mock.Anything, id, owner, expected, fixedNow).
			Return(&task.Task{ID: id, Title: "New title"}, nil)

		svc := service.NewTaskService(mockRepo, service.WithClock(clock))
		got, err := svc.UpdateTask(context.Background(), owner, id, service.UpdateTaskInput{
			Title:  ptr(" New title "),
			Status: ptr("Completed"),
			Tags:   []string{"a"},
		})
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Update", mock.Anything, id, owner, mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

		_, err := service.NewTaskService(mockRepo).UpdateTask(context.Background(), owner, id, service.UpdateTaskInput{})
		assertBusinessCode(t, err, service.CodeNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		svc := service.NewTaskService(mockRepo)

		_, err := svc.UpdateTask(context.Background(), owner, id, service.UpdateTaskInput{Title: ptr("")})
		assertBusinessCode(t, err, service.CodeValidation)

		_, err = svc.UpdateTask(context.Background(), owner, id, service.UpdateTaskInput{Priority: ptr("Critical")})
		assertBusinessCode(t, err, service.CodeValidation)

		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTaskService_DeleteTask(t *testing.T) {
	owner, id := uuid.New(), uuid.New()

	mockRepo := new(MockTaskRepository)
	mockRepo.On("Delete", mock.Anything, id, owner).Return(true, nil).Once()
	mockRepo.On("Delete", mock.Anything, id, owner).Return(false, nil).Once()
	svc := service.NewTaskService(mockRepo)

	assert.NoError(t, svc.DeleteTask(context.Background(), owner, id))
	assertBusinessCode(t, svc.DeleteTask(context.Background(), owner, id), service.CodeNotFound)
}

// fakeTokens выдаёт предсказуемый токен
type fakeTokens struct{}

func (fakeTokens) Issue(id auth.Identity) (string, error) {
	return "token-" + id.UserID.String(), nil
}

// plainHasher не хеширует, чтобы тесты не зависели от bcrypt
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}

func TestAuthService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("UserExists", mock.Anything, "alice@example.com", "alice").Return(false, nil)
		users.On("CreateUser", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil)

		svc := service.NewAuthService(users, fakeTokens{}, plainHasher{}, service.WithClock(clock))
		res, err := svc.Register(context.Background(), service.RegisterInput{
			Username: " alice ",
			Email:    "Alice@Example.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", res.User.Username)
		assert.Equal(t, "alice@example.com", res.User.Email)
		assert.Equal(t, "hashed:secret1", res.User.PasswordHash)
		assert.Equal(t, user.RoleUser, res.User.Role)
		assert.Equal(t, "token-"+res.User.ID.String(), res.Token)
		users.AssertExpectations(t)
	})

	t.Run("existing email or username", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("UserExists", mock.Anything, "alice@example.com", "alice").Return(true, nil)

		svc := service.NewAuthService(users, fakeTokens{}, plainHasher{})
		_, err := svc.Register(context.Background(), service.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
		assertBusinessCode(t, err, service.CodeConflict)
		users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate on insert", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("UserExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
		users.On("CreateUser", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

		svc := service.NewAuthService(users, fakeTokens{}, plainHasher{})
		_, err := svc.Register(context.Background(), service.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
		assertBusinessCode(t, err, service.CodeConflict)
	})
}

func TestAuthService_Login(t *testing.T) {
	stored := &user.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: "hashed:secret1", Role: user.RoleUser}

	t.Run("success", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		res, err := service.NewAuthService(users, fakeTokens{}, plainHasher{}).
			Login(context.Background(), service.LoginInput{Email: " ALICE@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, stored.ID, res.User.ID)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(stored, nil)

		_, err := service.NewAuthService(users, fakeTokens{}, plainHasher{}).
			Login(context.Background(), service.LoginInput{Email: "alice@example.com", Password: "nope"})
		assertBusinessCode(t, err, service.CodeUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(nil, repository.ErrNotFound)

		_, err := service.NewAuthService(users, fakeTokens{}, plainHasher{}).
			Login(context.Background(), service.LoginInput{Email: "bob@example.com", Password: "secret1"})
		assertBusinessCode(t, err, service.CodeUnauthorized)
	})
}

func TestAnalyticsService(t *testing.T) {
	owner := uuid.New()

	t.Run("dashboard", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		repo.On("StatusCounts", mock.Anything, owner).
			Return(analytics.Counts{Total: 4, Completed: 1, Pending: 3}, nil)

		summary, err := service.NewAnalyticsService(repo).Dashboard(context.Background(), owner)
		require.NoError(t, err)
		assert.Equal(t, int64(4), summary.TotalTasks)
		assert.Equal(t, 25.0, summary.CompletionRate)
	})

	t.Run("dashboard failure", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		repo.On("StatusCounts", mock.Anything, owner).Return(analytics.Counts{}, errors.New("db down"))

		_, err := service.NewAnalyticsService(repo).Dashboard(context.Background(), owner)
		assert.Error(t, err)
	})

	t.Run("trends use the last week", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		since := fixedNow.Add(-7 * 24 * time.Hour)
		repo.On("DailyTrend", mock.Anything, owner, since).
			Return([]analytics.DayTrend{{Date: "2026-05-01", TasksCreated: 2}}, nil)

		trend, err := service.NewAnalyticsService(repo, service.WithClock(clock)).Trends(context.Background(), owner)
		require.NoError(t, err)
		require.Len(t, trend, 1)
		repo.AssertExpectations(t)
	})
}
