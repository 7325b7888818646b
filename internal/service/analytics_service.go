package service

import (
	"context"
	"fmt"
	"taskmanager/internal/models/analytics"
	"time"

	"github.com/google/uuid"
)

type AnalyticsService struct {
	repo AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsService(repo AnalyticsRepository, opts ...Option) *AnalyticsService {
	s := applyOptions(opts)
	return &AnalyticsService{
		repo: repo,
		now:  s.now,
	}
}

func (s *AnalyticsService) Dashboard(ctx context.Context, owner uuid.UUID) (analytics.Summary, error) {
	counts, err := s.repo.StatusCounts(ctx, owner)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("сводка задач: %w", err)
	}
	return analytics.NewSummary(counts), nil
}

// Trends - динамика за последние analytics.TrendDays дней
func (s *AnalyticsService) Trends(ctx context.Context, owner uuid.UUID) ([]analytics.DayTrend, error) {
	since := s.now().Add(-analytics.TrendDays * 24 * time.Hour)
	trend, err := s.repo.DailyTrend(ctx, owner, since)
	if err != nil {
		return nil, fmt.Errorf("динамика задач: %w", err)
	}
	return trend, nil
}
