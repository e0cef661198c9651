package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/resolvedesk/complaint-api/internal/models"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
	"github.com/resolvedesk/complaint-api/pkg/export"
)

// ExportFormat selects the rendering of an admin export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportLister interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, int, error)
}

// ExportResult carries a rendered export document.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the filtered complaint listing as a downloadable
// CSV or PDF document.
type ExportService struct {
	repo    exportLister
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	maxRows int
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs the service.
func NewExportService(repo exportLister, maxRows int, logger *zap.Logger) *ExportService {
	if maxRows <= 0 {
		maxRows = 5000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:    repo,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		maxRows: maxRows,
		logger:  logger,
		now:     time.Now,
	}
}

// Complaints renders the complaints matching the filter in the requested
// format, newest first, capped at the configured row limit.
func (s *ExportService) Complaints(ctx context.Context, req ListComplaintsRequest, format ExportFormat) (*ExportResult, error) {
	filter := models.ComplaintFilter{
		Status:   models.ComplaintStatus(req.Status),
		Category: models.ComplaintCategory(req.Category),
		Priority: models.ComplaintPriority(req.Priority),
		Page:     1,
		PageSize: s.maxRows,
	}
	complaints, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list complaints for export")
	}
	if total > len(complaints) {
		s.logger.Warn("export truncated", zap.Int("total", total), zap.Int("exported", len(complaints)))
	}

	table := complaintTable(complaints)
	stamp := s.now().UTC().Format("2006-01-02")

	switch format {
	case ExportFormatCSV:
		body, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("complaints-%s.csv", stamp),
			ContentType: "text/csv",
			Body:        body,
		}, nil
	case ExportFormatPDF:
		body, err := s.pdf.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("complaints-%s.pdf", stamp),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func complaintTable(complaints []models.Complaint) export.Table {
	table := export.Table{
		Title:   "Complaints",
		Columns: []string{"ID", "Owner", "Title", "Category", "Priority", "Status", "Department", "Staff", "Created", "Resolved"},
	}
	for _, c := range complaints {
		table.Rows = append(table.Rows, []string{
			c.ID,
			derefOr(c.OwnerName, c.OwnerID),
			c.Title,
			string(c.Category),
			string(c.Priority),
			string(c.Status),
			derefOr(c.Department, ""),
			derefOr(c.StaffName, ""),
			c.CreatedAt.UTC().Format(time.RFC3339),
			formatTimePtr(c.ResolvedAt),
		})
	}
	return table
}

func derefOr(value *string, fallback string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return fallback
	}
	return *value
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
