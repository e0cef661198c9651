package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	"github.com/resolvedesk/complaint-api/internal/service"
)

type fakeDashboardRepo struct {
	counts *models.StatusCounts
	recent []models.Complaint
}

func (f *fakeDashboardRepo) StatusCounts(ctx context.Context) (*models.StatusCounts, error) {
	return f.counts, nil
}

func (f *fakeDashboardRepo) Recent(ctx context.Context, limit int) ([]models.Complaint, error) {
	return f.recent, nil
}

func newAdminHandlerForTest(repo *fakeComplaintRepo, dash *fakeDashboardRepo) *AdminHandler {
	complaints := service.NewComplaintService(repo, nil, validator.New(), zap.NewNop())
	dashboard := service.NewDashboardService(dash, nil, time.Minute, 5, zap.NewNop())
	exports := service.NewExportService(repo, 100, zap.NewNop())
	return NewAdminHandler(complaints, dashboard, exports)
}

func TestAdminHandlerListWithPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeComplaintRepo{listResult: []models.Complaint{{ID: "c1"}}, listCount: 25}
	h := newAdminHandlerForTest(repo, &fakeDashboardRepo{counts: &models.StatusCounts{}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/complaints?status=Pending&page=2&page_size=10", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.EqualValues(t, 2, envelope.Pagination["page"])
	assert.EqualValues(t, 25, envelope.Pagination["total_count"])
	assert.EqualValues(t, 3, envelope.Pagination["total_pages"])
}

func TestAdminHandlerRespondRejectsEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusInProgress},
	}}
	h := newAdminHandlerForTest(repo, &fakeDashboardRepo{counts: &models.StatusCounts{}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/complaints/c1/respond", strings.NewReader(`{"admin_response":"  "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Respond(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandlerAssign(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeComplaintRepo{complaints: map[string]*models.Complaint{
		"c1": {ID: "c1", Status: models.StatusPending},
	}}
	h := newAdminHandlerForTest(repo, &fakeDashboardRepo{counts: &models.StatusCounts{}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/complaints/c1/assign", strings.NewReader(`{"department":"Facilities","staff_name":"Dana"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Assign(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var updated models.Complaint
	require.NoError(t, json.Unmarshal(envelope.Data, &updated))
	assert.Equal(t, models.StatusInProgress, updated.Status)
	require.NotNil(t, updated.Department)
	assert.Equal(t, "Facilities", *updated.Department)
}

func TestAdminHandlerUpdateNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAdminHandlerForTest(&fakeComplaintRepo{}, &fakeDashboardRepo{counts: &models.StatusCounts{}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/admin/complaints/missing", strings.NewReader(`{"status":"Resolved"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Update(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminHandlerDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dash := &fakeDashboardRepo{
		counts: &models.StatusCounts{Total: 7, Pending: 3, InProgress: 2, Resolved: 1, Closed: 1},
		recent: []models.Complaint{{ID: "c7"}},
	}
	h := newAdminHandlerForTest(&fakeComplaintRepo{}, dash)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)

	h.Dashboard(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var summary models.DashboardSummary
	require.NoError(t, json.Unmarshal(envelope.Data, &summary))
	assert.Equal(t, 7, summary.Total)
	assert.Len(t, summary.RecentComplaints, 1)
	assert.Equal(t, false, envelope.Meta["cache"])
}

func TestAdminHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeComplaintRepo{listResult: []models.Complaint{{ID: "c1", Title: "Broken gate", Category: "Service", Status: models.StatusPending}}, listCount: 1}
	h := newAdminHandlerForTest(repo, &fakeDashboardRepo{counts: &models.StatusCounts{}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/complaints/export?format=csv", nil)

	h.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Broken gate")
}

func TestAdminHandlerExportUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newAdminHandlerForTest(&fakeComplaintRepo{}, &fakeDashboardRepo{counts: &models.StatusCounts{}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/complaints/export?format=xlsx", nil)

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
