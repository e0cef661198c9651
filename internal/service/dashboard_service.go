package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
)

type dashboardRepository interface {
	StatusCounts(ctx context.Context) (*models.StatusCounts, error)
	Recent(ctx context.Context, limit int) ([]models.Complaint, error)
}

// DashboardService composes the admin landing summary: per-status totals
// over the whole corpus plus the most recently created complaints.
type DashboardService struct {
	repo        dashboardRepository
	cache       *CacheService
	cacheTTL    time.Duration
	recentLimit int
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs the service with sane defaults.
func NewDashboardService(repo dashboardRepository, cache *CacheService, cacheTTL time.Duration, recentLimit int, logger *zap.Logger) *DashboardService {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		repo:        repo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		recentLimit: recentLimit,
		logger:      logger,
		now:         time.Now,
	}
}

// Summary returns the dashboard payload and indicates cache utilisation.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	const cacheKey = "dashboard:summary"
	if s.cache != nil {
		var cached models.DashboardSummary
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	counts, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to count complaints")
	}
	recent, err := s.repo.Recent(ctx, s.recentLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load recent complaints")
	}

	summary := &models.DashboardSummary{
		Total:            counts.Total,
		Pending:          counts.Pending,
		InProgress:       counts.InProgress,
		Resolved:         counts.Resolved,
		Closed:           counts.Closed,
		RecentComplaints: recent,
		GeneratedAt:      s.now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}
