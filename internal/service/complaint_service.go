package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
)

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
	Update(ctx context.Context, complaint *models.Complaint) error
	Delete(ctx context.Context, id string) (bool, error)
}

// ComplaintService owns the complaint lifecycle: submission, assignment,
// administrative response and status transitions, and resolution stamping.
type ComplaintService struct {
	repo      complaintRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewComplaintService constructs the service.
func NewComplaintService(repo complaintRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ComplaintService{repo: repo, cache: cache, validator: validate, logger: logger, now: time.Now}
	svc.validator.RegisterValidation("complaint_category", func(fl validator.FieldLevel) bool {
		return models.ValidCategory(models.ComplaintCategory(fl.Field().String()))
	})
	svc.validator.RegisterValidation("complaint_priority", func(fl validator.FieldLevel) bool {
		return models.ValidPriority(models.ComplaintPriority(fl.Field().String()))
	})
	return svc
}

// SubmitComplaintRequest describes the submission payload. OwnerID comes
// from the authenticated caller, never the request body.
type SubmitComplaintRequest struct {
	OwnerID     string `json:"-" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required,complaint_category"`
	Priority    string `json:"priority" validate:"omitempty,complaint_priority"`
}

// AssignComplaintRequest carries assignment fields; each is independently
// optional and merged against the stored value.
type AssignComplaintRequest struct {
	Department *string `json:"department"`
	StaffName  *string `json:"staff_name"`
}

// UpdateComplaintRequest describes the administrative partial update. Each
// present field is applied independently.
type UpdateComplaintRequest struct {
	Status        *string                 `json:"status"`
	Assignment    *AssignComplaintRequest `json:"assigned_to"`
	AdminResponse *string                 `json:"admin_response"`
}

// ListComplaintsRequest filters the administrative listing. Filter fields
// are ANDed exact-match predicates.
type ListComplaintsRequest struct {
	Status   string
	Category string
	Priority string
	Page     int
	PageSize int
}

// Submit validates and persists a new complaint with status Pending and the
// priority defaulted to Medium when omitted.
func (s *ComplaintService) Submit(ctx context.Context, req SubmitComplaintRequest) (*models.Complaint, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	priority := models.ComplaintPriority(req.Priority)
	if req.Priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now().UTC()
	complaint := &models.Complaint{
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    models.ComplaintCategory(req.Category),
		Priority:    priority,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create complaint")
	}
	s.invalidateAggregates(ctx)
	return complaint, nil
}

// GetOwned returns a complaint only when it belongs to ownerID.
func (s *ComplaintService) GetOwned(ctx context.Context, ownerID, id string) (*models.Complaint, error) {
	complaint, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint.OwnerID != ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to access this complaint")
	}
	return complaint, nil
}

// ListOwned returns every complaint for the owner, newest first.
func (s *ComplaintService) ListOwned(ctx context.Context, ownerID string) ([]models.Complaint, error) {
	complaints, _, err := s.repo.List(ctx, models.ComplaintFilter{OwnerID: ownerID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list complaints")
	}
	return complaints, nil
}

// ListAll returns the administrative listing with pagination metadata. Total
// count and page count are reported independently of the returned page, so
// an empty page past the end is distinguishable from an error.
func (s *ComplaintService) ListAll(ctx context.Context, req ListComplaintsRequest) ([]models.Complaint, *models.Pagination, error) {
	filter := models.ComplaintFilter{
		Status:   models.ComplaintStatus(req.Status),
		Category: models.ComplaintCategory(req.Category),
		Priority: models.ComplaintPriority(req.Priority),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	complaints, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list complaints")
	}
	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	}
	return complaints, pagination, nil
}

// AdminGet returns any complaint by id without an ownership check.
func (s *ComplaintService) AdminGet(ctx context.Context, id string) (*models.Complaint, error) {
	return s.get(ctx, id)
}

// Assign merges the supplied assignment fields into the record. Assigning a
// Pending complaint advances it to In-Progress; any other status is left
// untouched.
func (s *ComplaintService) Assign(ctx context.Context, id string, req AssignComplaintRequest) (*models.Complaint, error) {
	complaint, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	mergeAssignment(complaint, req.Department, req.StaffName)
	if complaint.Status == models.StatusPending {
		complaint.Status = models.StatusInProgress
	}
	complaint.UpdatedAt = s.now().UTC()

	if err := s.update(ctx, complaint); err != nil {
		return nil, err
	}
	s.invalidateAggregates(ctx)
	return complaint, nil
}

// Respond sets or overwrites the administrator response without touching the
// status.
func (s *ComplaintService) Respond(ctx context.Context, id, adminResponse string) (*models.Complaint, error) {
	adminResponse = strings.TrimSpace(adminResponse)
	if adminResponse == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "admin response is required")
	}

	complaint, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	complaint.AdminResponse = &adminResponse
	complaint.UpdatedAt = s.now().UTC()

	if err := s.update(ctx, complaint); err != nil {
		return nil, err
	}
	s.invalidateAggregates(ctx)
	return complaint, nil
}

// AdminUpdate applies each present field independently. A status write to
// Resolved or Closed stamps ResolvedAt to now, re-stamping on repeated
// writes to a terminal-equivalent status.
func (s *ComplaintService) AdminUpdate(ctx context.Context, id string, req UpdateComplaintRequest) (*models.Complaint, error) {
	if req.Status != nil {
		status := models.ComplaintStatus(strings.TrimSpace(*req.Status))
		if !models.ValidStatus(status) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid status value")
		}
		*req.Status = string(status)
	}

	complaint, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if req.Status != nil {
		status := models.ComplaintStatus(*req.Status)
		complaint.Status = status
		if status == models.StatusResolved || status == models.StatusClosed {
			stamped := now
			complaint.ResolvedAt = &stamped
		}
	}
	if req.Assignment != nil {
		mergeAssignment(complaint, req.Assignment.Department, req.Assignment.StaffName)
	}
	if req.AdminResponse != nil {
		if response := strings.TrimSpace(*req.AdminResponse); response != "" {
			complaint.AdminResponse = &response
		}
	}
	complaint.UpdatedAt = now

	if err := s.update(ctx, complaint); err != nil {
		return nil, err
	}
	s.invalidateAggregates(ctx)
	return complaint, nil
}

// Delete permanently removes a complaint.
func (s *ComplaintService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete complaint")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	s.invalidateAggregates(ctx)
	return nil
}

func (s *ComplaintService) get(ctx context.Context, id string) (*models.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load complaint")
	}
	return complaint, nil
}

func (s *ComplaintService) update(ctx context.Context, complaint *models.Complaint) error {
	if err := s.repo.Update(ctx, complaint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update complaint")
	}
	return nil
}

func (s *ComplaintService) invalidateAggregates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, "analytics:*")
	_ = s.cache.Invalidate(ctx, "dashboard:*")
}

// mergeAssignment applies present, non-empty assignment fields. A field
// omitted or blank keeps the previously stored value.
func mergeAssignment(complaint *models.Complaint, department, staffName *string) {
	if department != nil {
		if d := strings.TrimSpace(*department); d != "" {
			complaint.Department = &d
		}
	}
	if staffName != nil {
		if n := strings.TrimSpace(*staffName); n != "" {
			complaint.StaffName = &n
		}
	}
}
