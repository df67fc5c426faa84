package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/metrics"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// ipqcMetricKind labels IPQC audits in the report metrics.
const ipqcMetricKind = "ipqc-audit"

// IPQCHandler serves the IPQC audit checklists.
type IPQCHandler struct {
	service ports.IPQCService
}

func NewIPQCHandler(service ports.IPQCService) *IPQCHandler {
	return &IPQCHandler{service: service}
}

func (h *IPQCHandler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/search/by-filters", h.Search)
	g.GET("/name/:name", h.CheckName)
	g.POST("/generate-audit-report", h.Generate)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/export", h.Export)
}

func bindAudit(c echo.Context) (ports.IPQCAuditInput, error) {
	var req ipqcAuditRequest
	if err := c.Bind(&req); err != nil {
		return ports.IPQCAuditInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return ports.IPQCAuditInput{Name: req.Name, Timestamp: req.Timestamp, Data: req.Data}, nil
}

// List returns audits newest first, without form data unless asked.
//
// @Summary      List IPQC audits
// @Tags         ipqc-audits
// @Produce      json
// @Security     BearerAuth
// @Param        include_data  query     bool  false  "Include the audit form data"
// @Success      200           {array}   domain.IPQCAudit
// @Router       /api/ipqc-audits [get]
func (h *IPQCHandler) List(c echo.Context) error {
	include := false
	if raw := c.QueryParam("include_data"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "include_data must be a boolean")
		}
		include = v
	}
	audits, err := h.service.List(c.Request().Context(), include)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, audits)
}

// @Summary      Search IPQC audits
// @Tags         ipqc-audits
// @Produce      json
// @Security     BearerAuth
// @Param        lineNumber  query     string  false  "Line, e.g. I or II"
// @Param        date        query     string  false  "YYYY-MM-DD"
// @Param        shift       query     string  false  "Shift"
// @Success      200         {array}   domain.IPQCAudit
// @Router       /api/ipqc-audits/search/by-filters [get]
func (h *IPQCHandler) Search(c echo.Context) error {
	f := domain.IPQCFilter{
		LineNumber: c.QueryParam("lineNumber"),
		Date:       c.QueryParam("date"),
		Shift:      c.QueryParam("shift"),
	}
	audits, err := h.service.Search(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, audits)
}

// @Summary      Get IPQC audit
// @Tags         ipqc-audits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Audit id"
// @Success      200  {object}  domain.IPQCAudit
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/ipqc-audits/{id} [get]
func (h *IPQCHandler) Get(c echo.Context) error {
	a, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// @Summary      Create IPQC audit
// @Tags         ipqc-audits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      ipqcAuditRequest  true  "Audit"
// @Success      201   {object}  domain.IPQCAudit
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/ipqc-audits [post]
func (h *IPQCHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindAudit(c)
	if err != nil {
		return err
	}
	a, err := h.service.Create(c.Request().Context(), in, actor)
	if err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(ipqcMetricKind, string(domain.AuditCreated)).Inc()
	return c.JSON(http.StatusCreated, a)
}

// @Summary      Update IPQC audit
// @Tags         ipqc-audits
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Audit id"
// @Param        body  body      ipqcAuditRequest  true  "Audit"
// @Success      200   {object}  domain.IPQCAudit
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/ipqc-audits/{id} [put]
func (h *IPQCHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	in, err := bindAudit(c)
	if err != nil {
		return err
	}
	a, err := h.service.Update(c.Request().Context(), c.Param("id"), in, actor)
	if err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(ipqcMetricKind, string(domain.AuditUpdated)).Inc()
	return c.JSON(http.StatusOK, a)
}

// @Summary      Delete IPQC audit
// @Tags         ipqc-audits
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Audit id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/ipqc-audits/{id} [delete]
func (h *IPQCHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), actor); err != nil {
		return err
	}
	metrics.ReportOperationsTotal.WithLabelValues(ipqcMetricKind, string(domain.AuditDeleted)).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Audit deleted successfully"})
}

// CheckName accepts exclude_id, or excludeId as the report routes do.
//
// @Summary      Check IPQC audit name
// @Tags         ipqc-audits
// @Produce      json
// @Security     BearerAuth
// @Param        name        path      string  true   "Audit name"
// @Param        exclude_id  query     string  false  "Audit being renamed"
// @Success      200         {object}  existsResponse
// @Router       /api/ipqc-audits/name/{name} [get]
func (h *IPQCHandler) CheckName(c echo.Context) error {
	exclude := c.QueryParam("exclude_id")
	if exclude == "" {
		exclude = c.QueryParam("excludeId")
	}
	exists, err := h.service.NameExists(c.Request().Context(), c.Param("name"), exclude)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, existsResponse{Exists: exists})
}

// @Summary      Generate IPQC audit workbook
// @Tags         ipqc-audits
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        body  body      ipqcAuditRequest  true  "Audit"
// @Success      200   {file}    binary
// @Failure      400   {object}  errorResponse
// @Router       /api/ipqc-audits/generate-audit-report [post]
func (h *IPQCHandler) Generate(c echo.Context) error {
	in, err := bindAudit(c)
	if err != nil {
		return err
	}
	file, err := h.service.Generate(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return auditAttachment(c, file)
}

// @Summary      Export IPQC audit workbook
// @Tags         ipqc-audits
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        id   path      string  true  "Audit id"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /api/ipqc-audits/{id}/export [get]
func (h *IPQCHandler) Export(c echo.Context) error {
	file, err := h.service.Export(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return auditAttachment(c, file)
}

func auditAttachment(c echo.Context, file *ports.ExportFile) error {
	metrics.ReportExportsTotal.WithLabelValues(ipqcMetricKind).Inc()
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, file.ContentType, file.Data)
}
