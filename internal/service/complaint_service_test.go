package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
)

type mockComplaintRepo struct {
	complaints map[string]*models.Complaint
	listResult []models.Complaint
	listCount  int
	listFilter models.ComplaintFilter
	listErr    error
	createErr  error
	updateErr  error
	deleteErr  error
}

func (m *mockComplaintRepo) Create(ctx context.Context, complaint *models.Complaint) error {
	if m.createErr != nil {
		return m.createErr
	}
	if complaint.ID == "" {
		complaint.ID = "generated-id"
	}
	if m.complaints == nil {
		m.complaints = make(map[string]*models.Complaint)
	}
	copy := *complaint
	m.complaints[complaint.ID] = &copy
	return nil
}

func (m *mockComplaintRepo) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockComplaintRepo) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	m.listFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listCount, nil
}

func (m *mockComplaintRepo) Update(ctx context.Context, complaint *models.Complaint) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.complaints[complaint.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *complaint
	m.complaints[complaint.ID] = &copy
	return nil
}

func (m *mockComplaintRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.complaints[id]; !ok {
		return false, nil
	}
	delete(m.complaints, id)
	return true, nil
}

func newComplaintServiceForTest(repo *mockComplaintRepo, at time.Time) *ComplaintService {
	svc := NewComplaintService(repo, nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func strPtr(s string) *string { return &s }

func TestComplaintSubmitDefaults(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &mockComplaintRepo{}
	svc := newComplaintServiceForTest(repo, at)

	complaint, err := svc.Submit(context.Background(), SubmitComplaintRequest{
		OwnerID:     "owner-1",
		Title:       "  Broken printer  ",
		Description: "It jams on every page",
		Category:    "Technical",
	})
	require.NoError(t, err)
	assert.Equal(t, "Broken printer", complaint.Title)
	assert.Equal(t, models.PriorityMedium, complaint.Priority)
	assert.Equal(t, models.StatusPending, complaint.Status)
	assert.Equal(t, at, complaint.CreatedAt)
	assert.Equal(t, at, complaint.UpdatedAt)
	assert.Nil(t, complaint.ResolvedAt)
}

func TestComplaintSubmitRejectsUnknownCategory(t *testing.T) {
	svc := newComplaintServiceForTest(&mockComplaintRepo{}, time.Now())

	_, err := svc.Submit(context.Background(), SubmitComplaintRequest{
		OwnerID:     "owner-1",
		Title:       "Late delivery",
		Description: "Parcel is a week late",
		Category:    "Shipping",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestComplaintSubmitKeepsExplicitPriority(t *testing.T) {
	repo := &mockComplaintRepo{}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaint, err := svc.Submit(context.Background(), SubmitComplaintRequest{
		OwnerID:     "owner-1",
		Title:       "Outage",
		Description: "Cannot reach the portal",
		Category:    "Technical",
		Priority:    "High",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, complaint.Priority)
}

func TestComplaintGetOwned(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", OwnerID: "owner-1", Title: "Mine"},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaint, err := svc.GetOwned(context.Background(), "owner-1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Mine", complaint.Title)

	_, err = svc.GetOwned(context.Background(), "owner-2", "c1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.GetOwned(context.Background(), "owner-1", "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestComplaintListOwnedScopesFilter(t *testing.T) {
	repo := &mockComplaintRepo{listResult: []models.Complaint{{ID: "c1", OwnerID: "owner-1"}}, listCount: 1}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaints, err := svc.ListOwned(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, complaints, 1)
	assert.Equal(t, "owner-1", repo.listFilter.OwnerID)
	assert.Zero(t, repo.listFilter.PageSize)
}

func TestComplaintListAllPagination(t *testing.T) {
	repo := &mockComplaintRepo{listResult: []models.Complaint{{ID: "c1"}}, listCount: 21}
	svc := newComplaintServiceForTest(repo, time.Now())

	_, pagination, err := svc.ListAll(context.Background(), ListComplaintsRequest{Status: "Pending"})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 10, pagination.PageSize)
	assert.Equal(t, 21, pagination.TotalCount)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, models.StatusPending, repo.listFilter.Status)
}

func TestComplaintAssignAdvancesPending(t *testing.T) {
	at := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", OwnerID: "owner-1", Status: models.StatusPending},
	}}
	svc := newComplaintServiceForTest(repo, at)

	complaint, err := svc.Assign(context.Background(), "c1", AssignComplaintRequest{
		Department: strPtr("Facilities"),
		StaffName:  strPtr("Dana"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, complaint.Status)
	assert.Equal(t, "Facilities", *complaint.Department)
	assert.Equal(t, "Dana", *complaint.StaffName)
	assert.Equal(t, at, complaint.UpdatedAt)
}

func TestComplaintAssignLeavesNonPendingStatus(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusResolved},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaint, err := svc.Assign(context.Background(), "c1", AssignComplaintRequest{Department: strPtr("Support")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, complaint.Status)
}

func TestComplaintAssignKeepsStoredFieldsOnBlank(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusInProgress, Department: strPtr("Support"), StaffName: strPtr("Alex")},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaint, err := svc.Assign(context.Background(), "c1", AssignComplaintRequest{
		Department: strPtr("  "),
		StaffName:  strPtr("Morgan"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Support", *complaint.Department)
	assert.Equal(t, "Morgan", *complaint.StaffName)
}

func TestComplaintRespond(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusInProgress},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaint, err := svc.Respond(context.Background(), "c1", "  We are on it  ")
	require.NoError(t, err)
	require.NotNil(t, complaint.AdminResponse)
	assert.Equal(t, "We are on it", *complaint.AdminResponse)
	assert.Equal(t, models.StatusInProgress, complaint.Status)

	_, err = svc.Respond(context.Background(), "c1", "   ")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestComplaintAdminUpdateStampsResolvedAt(t *testing.T) {
	first := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusInProgress},
	}}
	svc := newComplaintServiceForTest(repo, first)

	complaint, err := svc.AdminUpdate(context.Background(), "c1", UpdateComplaintRequest{Status: strPtr("Resolved")})
	require.NoError(t, err)
	require.NotNil(t, complaint.ResolvedAt)
	assert.Equal(t, first, *complaint.ResolvedAt)

	second := first.Add(48 * time.Hour)
	svc.now = func() time.Time { return second }

	complaint, err = svc.AdminUpdate(context.Background(), "c1", UpdateComplaintRequest{Status: strPtr("Closed")})
	require.NoError(t, err)
	require.NotNil(t, complaint.ResolvedAt)
	assert.Equal(t, second, *complaint.ResolvedAt)
}

func TestComplaintAdminUpdateRejectsInvalidStatus(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusPending},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	_, err := svc.AdminUpdate(context.Background(), "c1", UpdateComplaintRequest{Status: strPtr("Reopened")})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, models.StatusPending, repo.complaints["c1"].Status)
}

func TestComplaintAdminUpdateAssignmentWithoutStatusChange(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusPending},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaint, err := svc.AdminUpdate(context.Background(), "c1", UpdateComplaintRequest{
		Assignment: &AssignComplaintRequest{Department: strPtr("Billing")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, complaint.Status)
	assert.Equal(t, "Billing", *complaint.Department)
	assert.Nil(t, complaint.ResolvedAt)
}

func TestComplaintAdminUpdateIgnoresBlankResponse(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusInProgress, AdminResponse: strPtr("Original note")},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	complaint, err := svc.AdminUpdate(context.Background(), "c1", UpdateComplaintRequest{AdminResponse: strPtr("  ")})
	require.NoError(t, err)
	require.NotNil(t, complaint.AdminResponse)
	assert.Equal(t, "Original note", *complaint.AdminResponse)
}

func TestComplaintDelete(t *testing.T) {
	repo := &mockComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1"},
	}}
	svc := newComplaintServiceForTest(repo, time.Now())

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	assert.Empty(t, repo.complaints)

	err := svc.Delete(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
