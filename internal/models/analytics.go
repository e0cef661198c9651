package models

import "time"

// CategoryStat summarises complaints grouped by category. Closed records
// count towards Count but have no per-status column of their own.
type CategoryStat struct {
	Category   ComplaintCategory `db:"category" json:"category"`
	Count      int               `db:"count" json:"count"`
	Pending    int               `db:"pending" json:"pending"`
	InProgress int               `db:"in_progress" json:"in_progress"`
	Resolved   int               `db:"resolved" json:"resolved"`
}

// MonthlyTrend summarises complaints created within one calendar month.
type MonthlyTrend struct {
	Year       int `db:"year" json:"year"`
	Month      int `db:"month" json:"month"`
	Count      int `db:"count" json:"count"`
	Pending    int `db:"pending" json:"pending"`
	InProgress int `db:"in_progress" json:"in_progress"`
	Resolved   int `db:"resolved" json:"resolved"`
}

// FrequentIssue is a recurring (category, title) pair. AvgResolutionDays is
// the mean resolution time over the group's resolved members only and is nil
// when no member has been resolved.
type FrequentIssue struct {
	Category          ComplaintCategory `db:"category" json:"category"`
	Title             string            `db:"title" json:"title"`
	Count             int               `db:"count" json:"count"`
	AvgResolutionDays *float64          `db:"avg_resolution_days" json:"avg_resolution_days,omitempty"`
}

// PriorityStat summarises complaints grouped by priority.
type PriorityStat struct {
	Priority   ComplaintPriority `db:"priority" json:"priority"`
	Count      int               `db:"count" json:"count"`
	Pending    int               `db:"pending" json:"pending"`
	InProgress int               `db:"in_progress" json:"in_progress"`
	Resolved   int               `db:"resolved" json:"resolved"`
}

// StatusCounts holds whole-corpus totals per lifecycle status.
type StatusCounts struct {
	Total      int `db:"total" json:"total"`
	Pending    int `db:"pending" json:"pending"`
	InProgress int `db:"in_progress" json:"in_progress"`
	Resolved   int `db:"resolved" json:"resolved"`
	Closed     int `db:"closed" json:"closed"`
}

// DashboardSummary is the admin landing payload.
type DashboardSummary struct {
	Total            int         `json:"total"`
	Pending          int         `json:"pending"`
	InProgress       int         `json:"in_progress"`
	Resolved         int         `json:"resolved"`
	Closed           int         `json:"closed"`
	RecentComplaints []Complaint `json:"recent_complaints"`
	GeneratedAt      time.Time   `json:"generated_at"`
}
