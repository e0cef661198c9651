package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
)

type mockAnalyticsRepo struct {
	categories     []models.CategoryStat
	trends         []models.MonthlyTrend
	issues         []models.FrequentIssue
	priorities     []models.PriorityStat
	err            error
	trendStart     time.Time
	trendEnd       time.Time
	issuesMinCount int
	calls          int
}

func (m *mockAnalyticsRepo) CategoryStats(ctx context.Context) ([]models.CategoryStat, error) {
	m.calls++
	return m.categories, m.err
}

func (m *mockAnalyticsRepo) MonthlyTrends(ctx context.Context, start, end time.Time) ([]models.MonthlyTrend, error) {
	m.calls++
	m.trendStart, m.trendEnd = start, end
	return m.trends, m.err
}

func (m *mockAnalyticsRepo) FrequentIssues(ctx context.Context, minCount int) ([]models.FrequentIssue, error) {
	m.calls++
	m.issuesMinCount = minCount
	return m.issues, m.err
}

func (m *mockAnalyticsRepo) PriorityStats(ctx context.Context) ([]models.PriorityStat, error) {
	m.calls++
	return m.priorities, m.err
}

// memoryCacheRepo stores JSON payloads in-process for cache path tests.
type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = payload
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestAnalyticsCategoryStatsOrdering(t *testing.T) {
	repo := &mockAnalyticsRepo{categories: []models.CategoryStat{
		{Category: "Billing", Count: 2},
		{Category: "Technical", Count: 9},
		{Category: "Service", Count: 5},
	}}
	svc := NewAnalyticsService(repo, nil, time.Minute, zap.NewNop())

	stats, cached, err := svc.CategoryStats(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, stats, 3)
	assert.Equal(t, models.ComplaintCategory("Technical"), stats[0].Category)
	assert.Equal(t, models.ComplaintCategory("Service"), stats[1].Category)
	assert.Equal(t, models.ComplaintCategory("Billing"), stats[2].Category)
}

func TestAnalyticsMonthlyTrendsYearBounds(t *testing.T) {
	repo := &mockAnalyticsRepo{trends: []models.MonthlyTrend{
		{Year: 2023, Month: 7, Count: 3},
		{Year: 2023, Month: 2, Count: 1},
	}}
	svc := NewAnalyticsService(repo, nil, time.Minute, zap.NewNop())

	trends, _, err := svc.MonthlyTrends(context.Background(), 2023)
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Equal(t, 2, trends[0].Month)
	assert.Equal(t, 7, trends[1].Month)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), repo.trendStart)
	assert.Equal(t, 2023, repo.trendEnd.Year())
	assert.Equal(t, time.December, repo.trendEnd.Month())
}

func TestAnalyticsMonthlyTrendsDefaultsToCurrentYear(t *testing.T) {
	repo := &mockAnalyticsRepo{}
	svc := NewAnalyticsService(repo, nil, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, _, err := svc.MonthlyTrends(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, repo.trendStart.Year())
}

func TestAnalyticsFrequentIssuesFilterAndLimit(t *testing.T) {
	avg := 2.5
	repo := &mockAnalyticsRepo{issues: []models.FrequentIssue{
		{Category: "Technical", Title: "wifi down", Count: 3, AvgResolutionDays: &avg},
		{Category: "Service", Title: "long queue", Count: 8},
		{Category: "Billing", Title: "double charge", Count: 1},
		{Category: "Delivery", Title: "late parcel", Count: 5},
	}}
	svc := NewAnalyticsService(repo, nil, time.Minute, zap.NewNop())

	issues, _, err := svc.FrequentIssues(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, frequentIssueMinCount, repo.issuesMinCount)
	require.Len(t, issues, 2)
	assert.Equal(t, "long queue", issues[0].Title)
	assert.Equal(t, "late parcel", issues[1].Title)
}

func TestAnalyticsFrequentIssuesDefaultLimit(t *testing.T) {
	repo := &mockAnalyticsRepo{issues: []models.FrequentIssue{{Category: "Service", Title: "slow", Count: 4}}}
	svc := NewAnalyticsService(repo, nil, time.Minute, zap.NewNop())

	issues, _, err := svc.FrequentIssues(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Nil(t, issues[0].AvgResolutionDays)
}

func TestAnalyticsPriorityStatsRankOrder(t *testing.T) {
	repo := &mockAnalyticsRepo{priorities: []models.PriorityStat{
		{Priority: "Low", Count: 4},
		{Priority: "Urgent", Count: 9},
		{Priority: "High", Count: 1},
		{Priority: "Medium", Count: 6},
	}}
	svc := NewAnalyticsService(repo, nil, time.Minute, zap.NewNop())

	stats, _, err := svc.PriorityStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.Equal(t, models.PriorityHigh, stats[0].Priority)
	assert.Equal(t, models.PriorityMedium, stats[1].Priority)
	assert.Equal(t, models.PriorityLow, stats[2].Priority)
	assert.Equal(t, models.ComplaintPriority("Urgent"), stats[3].Priority)
}

func TestAnalyticsCategoryStatsUsesCache(t *testing.T) {
	repo := &mockAnalyticsRepo{categories: []models.CategoryStat{{Category: "Technical", Count: 2}}}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, cache, time.Minute, zap.NewNop())

	_, cached, err := svc.CategoryStats(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	stats, cached, err := svc.CategoryStats(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, repo.calls)
}

func TestAnalyticsStoreErrorSurfaces(t *testing.T) {
	repo := &mockAnalyticsRepo{err: errors.New("connection reset")}
	svc := NewAnalyticsService(repo, nil, time.Minute, zap.NewNop())

	_, _, err := svc.CategoryStats(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStore))
}
