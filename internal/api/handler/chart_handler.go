package handler

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/charts"
)

// ChartHandler renders analytics results as standalone chart pages.
type ChartHandler struct {
	bgrade     ports.BGradeService
	inspection ports.InspectionService
	peel       ports.PeelService
}

func NewChartHandler(bgrade ports.BGradeService, inspection ports.InspectionService, peel ports.PeelService) *ChartHandler {
	return &ChartHandler{bgrade: bgrade, inspection: inspection, peel: peel}
}

func (h *ChartHandler) Register(g *echo.Group) {
	g.GET("/bgrade/grades", h.Grades)
	g.GET("/bgrade/defects", h.Reasons)
	g.GET("/qa/:type/defects", h.Defects)
	g.GET("/peel/graph", h.PeelGraph)
}

func html(c echo.Context, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// @Summary      Grade distribution chart
// @Tags         charts
// @Produce      html
// @Security     BearerAuth
// @Param        token  query  string  false  "Bearer token for pages opened without headers"
// @Param        start_date  query  string  true  "YYYY-MM-DD"
// @Param        end_date    query  string  true  "YYYY-MM-DD"
// @Success      200
// @Router       /charts/bgrade/grades [get]
func (h *ChartHandler) Grades(c echo.Context) error {
	r, err := bgradeRange(c)
	if err != nil {
		return err
	}
	ga, err := h.bgrade.GradeAnalysis(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return html(c, func(b *bytes.Buffer) error { return charts.GradePie(b, ga) })
}

// @Summary      B-grade reasons chart
// @Tags         charts
// @Produce      html
// @Security     BearerAuth
// @Param        token  query  string  false  "Bearer token for pages opened without headers"
// @Param        start_date  query  string  true   "YYYY-MM-DD"
// @Param        end_date    query  string  true   "YYYY-MM-DD"
// @Param        top_n       query  int     false  "Defaults to 10"
// @Success      200
// @Router       /charts/bgrade/defects [get]
func (h *ChartHandler) Reasons(c echo.Context) error {
	r, err := bgradeRange(c)
	if err != nil {
		return err
	}
	topN, err := queryInt(c, "top_n", 10)
	if err != nil {
		return err
	}
	ra, err := h.bgrade.DefectAnalysis(c.Request().Context(), r, topN)
	if err != nil {
		return err
	}
	return html(c, func(b *bytes.Buffer) error { return charts.ReasonBar(b, ra) })
}

// @Summary      Inspection defects chart
// @Tags         charts
// @Produce      html
// @Security     BearerAuth
// @Param        token  query  string  false  "Bearer token for pages opened without headers"
// @Param        type         path   string  true   "Inspection type"
// @Param        line_number  query  int     false  "Line; omitted for combined"
// @Param        top_n        query  int     false  "Defaults to 10"
// @Success      200
// @Router       /charts/qa/{type}/defects [get]
func (h *ChartHandler) Defects(c echo.Context) error {
	typ, err := domain.NormalizeInspectionType(c.Param("type"))
	if err != nil {
		return err
	}
	line, err := queryInt(c, "line_number", 0)
	if err != nil {
		return err
	}
	topN, err := queryInt(c, "top_n", 10)
	if err != nil {
		return err
	}
	da, err := h.inspection.DefectAnalysis(c.Request().Context(), typ, line, topN)
	if err != nil {
		return err
	}
	return html(c, func(b *bytes.Buffer) error { return charts.DefectBar(b, da) })
}

// @Summary      Peel strength chart
// @Tags         charts
// @Produce      html
// @Security     BearerAuth
// @Param        token  query  string  false  "Bearer token for pages opened without headers"
// @Param        month      query  string  true   "jan..dec"
// @Param        year       query  int     false  "Defaults to the current year"
// @Param        stringer   query  int     true   "1-12"
// @Param        cell_face  query  string  false  "front, back or both"
// @Success      200
// @Router       /charts/peel/graph [get]
func (h *ChartHandler) PeelGraph(c echo.Context) error {
	q, err := graphQuery(c)
	if err != nil {
		return err
	}
	points, err := h.peel.Graph(c.Request().Context(), q)
	if err != nil {
		return err
	}
	title := "Peel strength " + q.Collection()
	return html(c, func(b *bytes.Buffer) error { return charts.PeelLine(b, title, points) })
}
