package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"taskmanager/internal/auth"
	"taskmanager/internal/config"
	"taskmanager/internal/logger"
	"taskmanager/internal/repository/inmemory"
	"taskmanager/internal/repository/postgres"
	"taskmanager/internal/service"
	"taskmanager/internal/worker"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store - всё, что приложению нужно от хранилища
type Store interface {
	service.TaskRepository
	service.UserRepository
	service.AnalyticsRepository
	worker.OverdueMarker
	Close()
}

type App struct {
	config           *config.Config
	server           *http.Server
	router           *chi.Mux
	repository       Store
	tokens           *auth.TokenManager
	taskService      *service.TaskService
	authService      *service.AuthService
	analyticsService *service.AnalyticsService
	worker           *worker.OverdueWorker
	shutdowns        []func() // функции для graceful shutdown, выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.initRepository(ctx); err != nil {
		a.shutdown()
		return nil, err
	}

	a.tokens = auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)
	a.taskService = service.NewTaskService(a.repository)
	a.authService = service.NewAuthService(a.repository, a.tokens, auth.NewBcryptHasher(a.config.Auth.BcryptCost))
	a.analyticsService = service.NewAnalyticsService(a.repository)

	if a.config.Sweeper.Enabled {
		w, err := worker.NewOverdueWorker(a.repository, a.config.Sweeper.Schedule)
		if err != nil {
			a.shutdown()
			return nil, fmt.Errorf("создание воркера: %w", err)
		}
		a.worker = w
	}

	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("sweeper", a.worker != nil))
	return a, nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryInMemory:
		a.repository = inmemory.NewStorage()
		logger.Info("App: Используется хранилище в памяти")

	case config.RepositoryPostgres:
		if a.config.Database.Migrate {
			if err := postgres.Migrate(a.config.Database.URL); err != nil {
				return fmt.Errorf("миграции: %w", err)
			}
		}

		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.repository = storage

	default:
		return fmt.Errorf("неизвестный тип репозитория %q", a.config.Repository.Type)
	}

	a.shutdowns = append(a.shutdowns, a.repository.Close)
	return nil
}

// Handler отдаёт собранный роутер
func (a *App) Handler() http.Handler {
	return a.router
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер, воркер и хранилище.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	var wg sync.WaitGroup
	if a.worker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.worker.Start(workerCtx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("App: HTTP сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("App: Получен сигнал остановки")
	case err := <-serverErr:
		logger.Error("App: Ошибка HTTP сервера", err)
		runErr = fmt.Errorf("http сервер: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки HTTP сервера", err)
		if runErr == nil {
			runErr = fmt.Errorf("остановка сервера: %w", err)
		}
	}

	stopWorker()
	wg.Wait()

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
