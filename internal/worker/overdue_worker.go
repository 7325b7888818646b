package worker

import (
	"context"
	"fmt"
	"taskmanager/internal/logger"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OverdueMarker - то, что умеет пометить просроченные задачи одним запросом
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type OverdueWorker struct {
	repo     OverdueMarker
	schedule cron.Schedule
	spec     string
	cron     *cron.Cron
	now      func() time.Time
}

// NewOverdueWorker принимает расписание в формате cron из пяти полей, например "0 * * * *".
func NewOverdueWorker(repo OverdueMarker, schedule string) (*OverdueWorker, error) {
	parsed, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("разбор расписания %q: %w", schedule, err)
	}

	l := cronLogger{}
	return &OverdueWorker{
		repo:     repo,
		schedule: parsed,
		spec:     schedule,
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		now: time.Now,
	}, nil
}

// Start блокируется до отмены ctx, затем дожидается текущего прохода.
func (w *OverdueWorker) Start(ctx context.Context) {
	w.cron.Schedule(w.schedule, cron.FuncJob(func() {
		logger.Info("Worker: Фоновая проверка задач на просроченность", zap.Time("started_at", w.now()))
		_, _ = w.Check(ctx)
	}))
	w.cron.Start()
	logger.Info("Worker: Планировщик запущен", zap.String("schedule", w.spec))

	<-ctx.Done()
	logger.Info("Worker: Фоновая проверка останавливается")
	<-w.cron.Stop().Done()
}

// Check выполняет один проход. Ошибка логируется, повтором служит следующий запуск по расписанию.
func (w *OverdueWorker) Check(ctx context.Context) (int64, error) {
	start := time.Now()

	affected, err := w.repo.MarkOverdue(ctx, w.now())
	if err != nil {
		logger.Error("Worker: Ошибка пометки просроченных задач", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("пометка просроченных: %w", err)
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int64("overdue", affected),
	)
	return affected, nil
}

// cronLogger направляет логи планировщика в zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Logger.Sugar().Debugw("Worker: cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.Logger.Sugar().Errorw("Worker: cron: "+msg, append(keysAndValues, "error", err)...)
}
