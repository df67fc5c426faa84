package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/metrics"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// ReportHandler serves one report kind. The router mounts one per kind under
// the kind's route prefix.
type ReportHandler struct {
	kind    domain.ReportKind
	service ports.ReportService
}

func NewReportHandler(kind domain.ReportKind, service ports.ReportService) *ReportHandler {
	return &ReportHandler{kind: kind, service: service}
}

// Register mounts the report routes on g.
func (h *ReportHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/name/:name", h.CheckName)
	g.POST(fmt.Sprintf("/generate-%s-report", h.kind), h.Generate)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/export", h.Export)
	g.GET("/:id/history", h.History)
	g.POST("/:id/signatures/:section", h.Sign)
	g.DELETE("/:id/signatures/:section", h.Unsign)
}

func toInput(req reportRequest) ports.ReportInput {
	return ports.ReportInput{
		Name:      req.Name,
		Timestamp: req.Timestamp,
		FormData:  req.FormData,
		RowData:   req.RowData,
		Averages:  req.Averages,
	}
}

func (h *ReportHandler) bind(c echo.Context) (ports.ReportInput, error) {
	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return ports.ReportInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return toInput(req), nil
}

// List returns reports newest first.
//
// @Summary      List reports
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true   "gel, peel, adhesion or wetleakage"
// @Param        from  query     string  false  "YYYY-MM-DD, inclusive"
// @Param        to    query     string  false  "YYYY-MM-DD, inclusive"
// @Param        q     query     string  false  "Name contains (case-insensitive)"
// @Success      200   {array}   domain.Report
// @Failure      400   {object}  errorResponse
// @Router       /{kind}-test-reports [get]
func (h *ReportHandler) List(c echo.Context) error {
	r, err := domain.ParseDateRange(c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return err
	}
	reports, err := h.service.List(c.Request().Context(), h.kind, ports.ReportFilter{Range: r, Search: c.QueryParam("q")})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reports)
}

// Get returns one report.
//
// @Summary      Get report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Report kind"
// @Param        id    path      string  true  "Report id"
// @Success      200   {object}  domain.Report
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /{kind}-test-reports/{id} [get]
func (h *ReportHandler) Get(c echo.Context) error {
	rep, err := h.service.Get(c.Request().Context(), h.kind, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rep)
}

// Create saves a new report.
//
// @Summary      Create report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string         true  "Report kind"
// @Param        body  body      reportRequest  true  "Report"
// @Success      201   {object}  domain.Report
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /{kind}-test-reports [post]
func (h *ReportHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	rep, err := h.service.Create(c.Request().Context(), h.kind, in, actor)
	if err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(string(h.kind), string(domain.AuditCreated)).Inc()
	return c.JSON(http.StatusCreated, rep)
}

// Update replaces a report's content.
//
// @Summary      Update report
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string         true  "Report kind"
// @Param        id    path      string         true  "Report id"
// @Param        body  body      reportRequest  true  "Report"
// @Success      200   {object}  domain.Report
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /{kind}-test-reports/{id} [put]
func (h *ReportHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	rep, err := h.service.Update(c.Request().Context(), h.kind, c.Param("id"), in, actor)
	if err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(string(h.kind), string(domain.AuditUpdated)).Inc()
	return c.JSON(http.StatusOK, rep)
}

// Delete removes a report.
//
// @Summary      Delete report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Report kind"
// @Param        id    path      string  true  "Report id"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Router       /{kind}-test-reports/{id} [delete]
func (h *ReportHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), h.kind, c.Param("id"), actor); err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(string(h.kind), string(domain.AuditDeleted)).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "report deleted"})
}

// CheckName reports whether a name is already used by another report.
//
// @Summary      Check report name
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        kind       path      string  true   "Report kind"
// @Param        name       path      string  true   "Report name"
// @Param        excludeId  query     string  false  "Report being renamed"
// @Success      200        {object}  existsResponse
// @Router       /{kind}-test-reports/name/{name} [get]
func (h *ReportHandler) CheckName(c echo.Context) error {
	exists, err := h.service.NameExists(c.Request().Context(), h.kind, c.Param("name"), c.QueryParam("excludeId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, existsResponse{Exists: exists})
}

// Generate renders an unsaved report payload as a workbook.
//
// @Summary      Generate workbook
// @Tags         reports
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        kind  path      string         true  "Report kind"
// @Param        body  body      reportRequest  true  "Report"
// @Success      200   {file}    binary
// @Failure      400   {object}  errorResponse
// @Router       /{kind}-test-reports/generate-{kind}-report [post]
func (h *ReportHandler) Generate(c echo.Context) error {
	in, err := h.bind(c)
	if err != nil {
		return err
	}
	file, err := h.service.Generate(c.Request().Context(), h.kind, in)
	if err != nil {
		return err
	}
	return h.attachment(c, file)
}

// Export renders a stored report as a workbook.
//
// @Summary      Export workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        kind  path      string  true  "Report kind"
// @Param        id    path      string  true  "Report id"
// @Success      200   {file}    binary
// @Failure      404   {object}  errorResponse
// @Router       /{kind}-test-reports/{id}/export [get]
func (h *ReportHandler) Export(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	file, err := h.service.ExportStored(c.Request().Context(), h.kind, c.Param("id"), actor)
	if err != nil {
		return err
	}
	return h.attachment(c, file)
}

func (h *ReportHandler) attachment(c echo.Context, file *ports.ExportFile) error {
	metrics.ReportExportsTotal.WithLabelValues(string(h.kind)).Inc()
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}

// Sign places the caller's stored signature on a section.
//
// @Summary      Sign section
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string  true  "Report kind"
// @Param        id       path      string  true  "Report id"
// @Param        section  path      string  true  "Section, e.g. prepared or verifiedBySignature"
// @Success      200      {object}  domain.Report
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /{kind}-test-reports/{id}/signatures/{section} [post]
func (h *ReportHandler) Sign(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	rep, err := h.service.Sign(c.Request().Context(), h.kind, c.Param("id"), c.Param("section"), actor)
	if err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(string(h.kind), string(domain.AuditSigned)).Inc()
	return c.JSON(http.StatusOK, rep)
}

// Unsign removes the caller's signature from a section.
//
// @Summary      Remove signature from section
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string  true  "Report kind"
// @Param        id       path      string  true  "Report id"
// @Param        section  path      string  true  "Section"
// @Success      200      {object}  domain.Report
// @Failure      403      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /{kind}-test-reports/{id}/signatures/{section} [delete]
func (h *ReportHandler) Unsign(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	rep, err := h.service.Unsign(c.Request().Context(), h.kind, c.Param("id"), c.Param("section"), actor)
	if err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(string(h.kind), string(domain.AuditUnsigned)).Inc()
	return c.JSON(http.StatusOK, rep)
}

// History lists the audit trail of a report, oldest first.
//
// @Summary      Report history
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Report kind"
// @Param        id    path      string  true  "Report id"
// @Success      200   {array}   domain.AuditEntry
// @Router       /{kind}-test-reports/{id}/history [get]
func (h *ReportHandler) History(c echo.Context) error {
	entries, err := h.service.History(c.Request().Context(), h.kind, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
