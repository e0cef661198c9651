package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
)

// A frequent issue must recur; singleton groups are never reported.
const frequentIssueMinCount = 2

// defaultFrequentIssueLimit caps the frequent-issue listing when the caller
// does not supply a limit.
const defaultFrequentIssueLimit = 10

type analyticsRepository interface {
	CategoryStats(ctx context.Context) ([]models.CategoryStat, error)
	MonthlyTrends(ctx context.Context, start, end time.Time) ([]models.MonthlyTrend, error)
	FrequentIssues(ctx context.Context, minCount int) ([]models.FrequentIssue, error)
	PriorityStats(ctx context.Context) ([]models.PriorityStat, error)
}

// AnalyticsService computes the four read-only summaries over the complaint
// corpus. Grouping happens in the store; ordering, limits and defaults are
// applied here.
type AnalyticsService struct {
	repo     analyticsRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(repo analyticsRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// CategoryStats groups the corpus by category, most complained-about first.
// The second return value reports cache utilisation.
func (s *AnalyticsService) CategoryStats(ctx context.Context) ([]models.CategoryStat, bool, error) {
	const cacheKey = "analytics:category"
	var cached []models.CategoryStat
	if s.tryCache(ctx, cacheKey, &cached) {
		return cached, true, nil
	}

	stats, err := s.repo.CategoryStats(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to compute category stats")
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	s.persistCache(ctx, cacheKey, stats)
	return stats, false, nil
}

// MonthlyTrends groups complaints created in the given year by calendar
// month, in chronological order. A zero year means the current year.
func (s *AnalyticsService) MonthlyTrends(ctx context.Context, year int) ([]models.MonthlyTrend, bool, error) {
	if year == 0 {
		year = s.now().UTC().Year()
	}
	cacheKey := fmt.Sprintf("analytics:monthly:%d", year)
	var cached []models.MonthlyTrend
	if s.tryCache(ctx, cacheKey, &cached) {
		return cached, true, nil
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	trends, err := s.repo.MonthlyTrends(ctx, start, end)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to compute monthly trends")
	}
	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		return trends[i].Month < trends[j].Month
	})

	s.persistCache(ctx, cacheKey, trends)
	return trends, false, nil
}

// FrequentIssues returns recurring (category, title) groups, most frequent
// first, truncated to limit.
func (s *AnalyticsService) FrequentIssues(ctx context.Context, limit int) ([]models.FrequentIssue, bool, error) {
	if limit <= 0 {
		limit = defaultFrequentIssueLimit
	}
	cacheKey := fmt.Sprintf("analytics:frequent:%d", limit)
	var cached []models.FrequentIssue
	if s.tryCache(ctx, cacheKey, &cached) {
		return cached, true, nil
	}

	grouped, err := s.repo.FrequentIssues(ctx, frequentIssueMinCount)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to compute frequent issues")
	}

	issues := make([]models.FrequentIssue, 0, len(grouped))
	for _, issue := range grouped {
		if issue.Count < frequentIssueMinCount {
			continue
		}
		issues = append(issues, issue)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Count > issues[j].Count
	})
	if len(issues) > limit {
		issues = issues[:limit]
	}

	s.persistCache(ctx, cacheKey, issues)
	return issues, false, nil
}

// PriorityStats groups the corpus by priority in the fixed rank order High,
// Medium, Low, then anything unexpected.
func (s *AnalyticsService) PriorityStats(ctx context.Context) ([]models.PriorityStat, bool, error) {
	const cacheKey = "analytics:priority"
	var cached []models.PriorityStat
	if s.tryCache(ctx, cacheKey, &cached) {
		return cached, true, nil
	}

	stats, err := s.repo.PriorityStats(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to compute priority stats")
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return priorityRank(stats[i].Priority) < priorityRank(stats[j].Priority)
	})

	s.persistCache(ctx, cacheKey, stats)
	return stats, false, nil
}

func (s *AnalyticsService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		// a broken cache degrades to a miss; the store remains authoritative
		return false
	}
	return hit
}

func (s *AnalyticsService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func priorityRank(priority models.ComplaintPriority) int {
	switch priority {
	case models.PriorityHigh:
		return 1
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 3
	default:
		return 4
	}
}
