package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
)

type mockExportLister struct {
	complaints []models.Complaint
	total      int
	filter     models.ComplaintFilter
}

func (m *mockExportLister) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error) {
	m.filter = filter
	return m.complaints, m.total, nil
}

func TestExportComplaintsCSV(t *testing.T) {
	owner := "Taylor Reed"
	lister := &mockExportLister{
		complaints: []models.Complaint{{
			ID:        "c1",
			OwnerID:   "u1",
			OwnerName: &owner,
			Title:     "Broken door",
			Category:  "Service",
			Priority:  models.PriorityHigh,
			Status:    models.StatusPending,
			CreatedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		}},
		total: 1,
	}
	svc := NewExportService(lister, 100, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC) }

	result, err := svc.Complaints(context.Background(), ListComplaintsRequest{Status: "Pending"}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "complaints-2024-02-02.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	body := string(result.Body)
	assert.True(t, strings.HasPrefix(body, "ID,Owner,Title"))
	assert.Contains(t, body, "Taylor Reed")
	assert.Contains(t, body, "Broken door")

	assert.Equal(t, models.StatusPending, lister.filter.Status)
	assert.Equal(t, 100, lister.filter.PageSize)
}

func TestExportComplaintsPDF(t *testing.T) {
	lister := &mockExportLister{complaints: []models.Complaint{{ID: "c1", Title: "Noise"}}, total: 1}
	svc := NewExportService(lister, 100, zap.NewNop())

	result, err := svc.Complaints(context.Background(), ListComplaintsRequest{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.NotEmpty(t, result.Body)
}

func TestExportComplaintsUnsupportedFormat(t *testing.T) {
	svc := NewExportService(&mockExportLister{}, 100, zap.NewNop())

	_, err := svc.Complaints(context.Background(), ListComplaintsRequest{}, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
