package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/resolvedesk/complaint-api/internal/models"
)

const complaintColumns = `c.id, c.owner_id, c.title, c.description, c.category, c.priority, c.status,
c.assigned_department, c.assigned_staff_name, c.admin_response, c.resolved_at, c.created_at, c.updated_at,
u.full_name AS owner_name, u.email AS owner_email`

// ComplaintRepository manages persistence for complaint records. Owner
// name and email are attached on reads via a join on the users table.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository constructs a new repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a new complaint. Timestamps are expected to be set by the
// caller; the repository only assigns a missing ID.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	query := `INSERT INTO complaints (id, owner_id, title, description, category, priority, status,
assigned_department, assigned_staff_name, admin_response, resolved_at, created_at, updated_at)
VALUES (:id, :owner_id, :title, :description, :category, :priority, :status,
:assigned_department, :assigned_staff_name, :admin_response, :resolved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// GetByID returns a single complaint or sql.ErrNoRows.
func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints c LEFT JOIN users u ON u.id = c.owner_id WHERE c.id = $1`, complaintColumns)
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get complaint %s: %w", id, err)
	}
	return &complaint, nil
}

// List returns complaints matching the filter, newest first, together with
// the total matching count so callers can page past the returned slice.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	whereClause, args := complaintPredicate(filter)

	query := fmt.Sprintf(`SELECT %s FROM complaints c LEFT JOIN users u ON u.id = c.owner_id
WHERE %s ORDER BY c.created_at DESC`, complaintColumns, whereClause)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, filter.PageSize, (page-1)*filter.PageSize)
	}

	complaints := []models.Complaint{}
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM complaints c WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}
	return complaints, total, nil
}

// Update writes the full mutable state of a complaint back to the store.
func (r *ComplaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	query := `UPDATE complaints SET title = :title, description = :description, category = :category,
priority = :priority, status = :status, assigned_department = :assigned_department,
assigned_staff_name = :assigned_staff_name, admin_response = :admin_response,
resolved_at = :resolved_at, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, complaint)
	if err != nil {
		return fmt.Errorf("update complaint %s: %w", complaint.ID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete permanently removes a complaint. It reports whether a row existed.
func (r *ComplaintRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM complaints WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete complaint %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete complaint %s: %w", id, err)
	}
	return rows > 0, nil
}

// StatusCounts returns whole-corpus totals per lifecycle status.
func (r *ComplaintRepository) StatusCounts(ctx context.Context) (*models.StatusCounts, error) {
	query := `SELECT COUNT(*) AS total,
COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0) AS pending,
COALESCE(SUM(CASE WHEN status = 'In-Progress' THEN 1 ELSE 0 END), 0) AS in_progress,
COALESCE(SUM(CASE WHEN status = 'Resolved' THEN 1 ELSE 0 END), 0) AS resolved,
COALESCE(SUM(CASE WHEN status = 'Closed' THEN 1 ELSE 0 END), 0) AS closed
FROM complaints`
	var counts models.StatusCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	return &counts, nil
}

// Recent returns the most recently created complaints with owner identity.
func (r *ComplaintRepository) Recent(ctx context.Context, limit int) ([]models.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints c LEFT JOIN users u ON u.id = c.owner_id
ORDER BY c.created_at DESC LIMIT $1`, complaintColumns)
	complaints := []models.Complaint{}
	if err := r.db.SelectContext(ctx, &complaints, query, limit); err != nil {
		return nil, fmt.Errorf("recent complaints: %w", err)
	}
	return complaints, nil
}

func complaintPredicate(filter models.ComplaintFilter) (string, []interface{}) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.OwnerID != "" {
		where = append(where, fmt.Sprintf("c.owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("c.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("c.category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Priority != "" {
		where = append(where, fmt.Sprintf("c.priority = $%d", len(args)+1))
		args = append(args, filter.Priority)
	}
	return strings.Join(where, " AND "), args
}
