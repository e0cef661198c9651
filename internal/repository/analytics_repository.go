package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/resolvedesk/complaint-api/internal/models"
)

// statusBreakdown is shared by every grouped aggregation: total count plus
// per-status sub-counts. Closed is deliberately absent from the breakdown;
// it only contributes to the group total.
const statusBreakdown = `COUNT(*) AS count,
SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END) AS pending,
SUM(CASE WHEN status = 'In-Progress' THEN 1 ELSE 0 END) AS in_progress,
SUM(CASE WHEN status = 'Resolved' THEN 1 ELSE 0 END) AS resolved`

// AnalyticsRepository runs grouped aggregations over the complaint corpus.
// Result ordering is left to the service layer.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository constructs a new repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CategoryStats groups the whole corpus by category.
func (r *AnalyticsRepository) CategoryStats(ctx context.Context) ([]models.CategoryStat, error) {
	query := fmt.Sprintf("SELECT category, %s FROM complaints GROUP BY category", statusBreakdown)
	stats := []models.CategoryStat{}
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	return stats, nil
}

// MonthlyTrends groups complaints created within [start, end] by the year and
// month of their creation time.
func (r *AnalyticsRepository) MonthlyTrends(ctx context.Context, start, end time.Time) ([]models.MonthlyTrend, error) {
	query := fmt.Sprintf(`SELECT EXTRACT(YEAR FROM created_at)::int AS year,
EXTRACT(MONTH FROM created_at)::int AS month, %s
FROM complaints WHERE created_at >= $1 AND created_at <= $2
GROUP BY 1, 2`, statusBreakdown)
	trends := []models.MonthlyTrend{}
	if err := r.db.SelectContext(ctx, &trends, query, start, end); err != nil {
		return nil, fmt.Errorf("monthly trends: %w", err)
	}
	return trends, nil
}

// FrequentIssues groups by the exact (category, title) pair, keeping only
// groups with at least minCount members. The average resolution time is the
// mean over resolved members and NULL for groups with none.
func (r *AnalyticsRepository) FrequentIssues(ctx context.Context, minCount int) ([]models.FrequentIssue, error) {
	query := `SELECT category, title, COUNT(*) AS count,
AVG(EXTRACT(EPOCH FROM (resolved_at - created_at))) FILTER (WHERE resolved_at IS NOT NULL) / 86400.0 AS avg_resolution_days
FROM complaints
GROUP BY category, title
HAVING COUNT(*) >= $1`
	issues := []models.FrequentIssue{}
	if err := r.db.SelectContext(ctx, &issues, query, minCount); err != nil {
		return nil, fmt.Errorf("frequent issues: %w", err)
	}
	return issues, nil
}

// PriorityStats groups the whole corpus by priority.
func (r *AnalyticsRepository) PriorityStats(ctx context.Context) ([]models.PriorityStat, error) {
	query := fmt.Sprintf("SELECT priority, %s FROM complaints GROUP BY priority", statusBreakdown)
	stats := []models.PriorityStat{}
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("priority stats: %w", err)
	}
	return stats, nil
}
