package models

import "time"

// ComplaintCategory classifies what a complaint is about.
type ComplaintCategory string

const (
	CategoryService   ComplaintCategory = "Service"
	CategoryTechnical ComplaintCategory = "Technical"
	CategoryStaff     ComplaintCategory = "Staff"
	CategoryDelivery  ComplaintCategory = "Delivery"
	CategoryBilling   ComplaintCategory = "Billing"
	CategoryOther     ComplaintCategory = "Other"
)

// ComplaintPriority ranks how urgent a complaint is.
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "Low"
	PriorityMedium ComplaintPriority = "Medium"
	PriorityHigh   ComplaintPriority = "High"
)

// ComplaintStatus tracks where a complaint sits in its lifecycle.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In-Progress"
	StatusResolved   ComplaintStatus = "Resolved"
	StatusClosed     ComplaintStatus = "Closed"
)

// ValidCategory reports whether the value belongs to the category enum.
func ValidCategory(v ComplaintCategory) bool {
	switch v {
	case CategoryService, CategoryTechnical, CategoryStaff, CategoryDelivery, CategoryBilling, CategoryOther:
		return true
	}
	return false
}

// ValidPriority reports whether the value belongs to the priority enum.
func ValidPriority(v ComplaintPriority) bool {
	switch v {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidStatus reports whether the value belongs to the status enum.
func ValidStatus(v ComplaintStatus) bool {
	switch v {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Complaint is a user-submitted complaint record. Assignment fields are
// independently optional and merged field-by-field on update; ResolvedAt is
// stamped whenever status is written to Resolved or Closed and never cleared.
type Complaint struct {
	ID            string            `db:"id" json:"id"`
	OwnerID       string            `db:"owner_id" json:"owner_id"`
	OwnerName     *string           `db:"owner_name" json:"owner_name,omitempty"`
	OwnerEmail    *string           `db:"owner_email" json:"owner_email,omitempty"`
	Title         string            `db:"title" json:"title"`
	Description   string            `db:"description" json:"description"`
	Category      ComplaintCategory `db:"category" json:"category"`
	Priority      ComplaintPriority `db:"priority" json:"priority"`
	Status        ComplaintStatus   `db:"status" json:"status"`
	Department    *string           `db:"assigned_department" json:"assigned_department,omitempty"`
	StaffName     *string           `db:"assigned_staff_name" json:"assigned_staff_name,omitempty"`
	AdminResponse *string           `db:"admin_response" json:"admin_response,omitempty"`
	ResolvedAt    *time.Time        `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// ComplaintFilter narrows complaint listings. Empty fields are skipped;
// populated fields are ANDed exact-match predicates. PageSize <= 0 disables
// pagination and returns the full ordered result.
type ComplaintFilter struct {
	OwnerID  string
	Status   ComplaintStatus
	Category ComplaintCategory
	Priority ComplaintPriority
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
