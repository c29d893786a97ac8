package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"flowspace/internal/model"
	"flowspace/internal/service"
)

// ReportHandler handles report endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CreateReportRequest represents a report creation request.
type CreateReportRequest struct {
	Title     string             `json:"title" validate:"required,max=255"`
	Content   string             `json:"content" validate:"required"`
	Type      model.ReportType   `json:"type" validate:"omitempty,oneof=note report comment review"`
	Status    model.ReportStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	ProjectID uuid.UUID          `json:"projectId" validate:"required"`
	Tags      []string           `json:"tags"`
}

// UpdateReportRequest represents a partial report update.
type UpdateReportRequest struct {
	Title   *string             `json:"title" validate:"omitempty,max=255"`
	Content *string             `json:"content"`
	Type    *model.ReportType   `json:"type" validate:"omitempty,oneof=note report comment review"`
	Status  *model.ReportStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	Tags    *[]string           `json:"tags"`
}

// ListReports godoc
// @Summary List reports in projects the caller can read
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param projectId query string false "Project ID"
// @Param type query string false "note, report, comment or review"
// @Param status query string false "draft, published or archived"
// @Success 200 {object} Response{data=[]model.Report}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports [get]
func (h *ReportHandler) ListReports(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	filter := service.ReportListFilter{
		Type:   model.ReportType(c.QueryParam("type")),
		Status: model.ReportStatus(c.QueryParam("status")),
	}
	if raw := c.QueryParam("projectId"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			return badRequest("invalid projectId")
		}
		filter.ProjectID = &projectID
	}

	reports, err := h.reportService.List(c.Request().Context(), id.UserID, filter)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", reports)
}

// CreateReport godoc
// @Summary Create a report in a project
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReportRequest true "Report data"
// @Success 201 {object} Response{data=model.Report}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	report, err := h.reportService.Create(c.Request().Context(), id.UserID, service.CreateReportInput{
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		Status:    req.Status,
		ProjectID: req.ProjectID,
		Tags:      req.Tags,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusCreated, "report created", report)
}

// GetReport godoc
// @Summary Get a report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} Response{data=model.Report}
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	reportID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	report, err := h.reportService.Get(c.Request().Context(), id.UserID, reportID)
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "", report)
}

// UpdateReport godoc
// @Summary Update a report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body UpdateReportRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Report}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/{id} [put]
func (h *ReportHandler) UpdateReport(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	reportID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateReportRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	report, err := h.reportService.Update(c.Request().Context(), id.UserID, reportID, service.UpdateReportInput{
		Title:   req.Title,
		Content: req.Content,
		Type:    req.Type,
		Status:  req.Status,
		Tags:    req.Tags,
	})
	if err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "report updated", report)
}

// DeleteReport godoc
// @Summary Delete a report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c echo.Context) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}
	reportID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.reportService.Delete(c.Request().Context(), id.UserID, reportID); err != nil {
		return fail(err)
	}
	return respond(c, http.StatusOK, "report deleted", nil)
}
