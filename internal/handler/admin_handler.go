package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resolvedesk/complaint-api/internal/service"
	appErrors "github.com/resolvedesk/complaint-api/pkg/errors"
	"github.com/resolvedesk/complaint-api/pkg/response"
)

// AdminHandler serves the administrative complaint endpoints.
type AdminHandler struct {
	complaints *service.ComplaintService
	dashboard  *service.DashboardService
	exports    *service.ExportService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(complaints *service.ComplaintService, dashboard *service.DashboardService, exports *service.ExportService) *AdminHandler {
	return &AdminHandler{complaints: complaints, dashboard: dashboard, exports: exports}
}

func listRequestFromQuery(c *gin.Context) service.ListComplaintsRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	return service.ListComplaintsRequest{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Page:     page,
		PageSize: pageSize,
	}
}

// List godoc
// @Summary List all complaints
// @Description Paginated listing of every complaint with optional filters
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter"
// @Param category query string false "Category filter"
// @Param priority query string false "Priority filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/complaints [get]
func (h *AdminHandler) List(c *gin.Context) {
	complaints, pagination, err := h.complaints.ListAll(c.Request.Context(), listRequestFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, complaints, pagination)
}

// Get godoc
// @Summary Get a complaint
// @Description Fetch any complaint by id
// @Tags Admin
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	complaint, err := h.complaints.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, complaint, nil)
}

// Update godoc
// @Summary Update a complaint
// @Description Partially update status, assignment and admin response
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body service.UpdateComplaintRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id} [patch]
func (h *AdminHandler) Update(c *gin.Context) {
	var req service.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	complaint, err := h.complaints.AdminUpdate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, complaint, nil)
}

// Assign godoc
// @Summary Assign a complaint
// @Description Route a complaint to a department and staff member
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body service.AssignComplaintRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id}/assign [post]
func (h *AdminHandler) Assign(c *gin.Context) {
	var req service.AssignComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	complaint, err := h.complaints.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, complaint, nil)
}

// Respond godoc
// @Summary Record an admin response
// @Description Attach an administrative response to a complaint
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body map[string]string true "Response payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id}/respond [post]
func (h *AdminHandler) Respond(c *gin.Context) {
	var payload struct {
		AdminResponse string `json:"admin_response"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid response payload"))
		return
	}

	complaint, err := h.complaints.Respond(c.Request.Context(), c.Param("id"), payload.AdminResponse)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, complaint, nil)
}

// Delete godoc
// @Summary Delete a complaint
// @Description Permanently remove a complaint
// @Tags Admin
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/complaints/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.complaints.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Dashboard godoc
// @Summary Dashboard summary
// @Description Status counts plus the most recent complaints
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	summary, cached, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cache": cached})
}

// Export godoc
// @Summary Export complaints
// @Description Download the filtered complaint listing as CSV or PDF
// @Tags Admin
// @Produce octet-stream
// @Param format query string false "Export format (csv or pdf)"
// @Param status query string false "Status filter"
// @Param category query string false "Category filter"
// @Param priority query string false "Priority filter"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /admin/complaints/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	req := listRequestFromQuery(c)

	result, err := h.exports.Complaints(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
