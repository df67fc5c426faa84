package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// QAHandler serves the inspection rejection datasets.
type QAHandler struct {
	service ports.InspectionService
}

func NewQAHandler(service ports.InspectionService) *QAHandler {
	return &QAHandler{service: service}
}

func (h *QAHandler) Register(g *echo.Group) {
	g.GET("/lines/:line/:type", h.LineData)
	g.GET("/lines/:line/:type/summary", h.LineSummary)
	g.GET("/combined/:type", h.CombinedData)
	g.GET("/combined/:type/summary", h.CombinedSummary)
	g.GET("/analysis/defects/:type", h.Defects)
	g.GET("/analysis/production", h.Production)
	g.GET("/data/date-range", h.DateRange)
	g.GET("/collections", h.Collections)
}

func (h *QAHandler) query(c echo.Context) (ports.InspectionQuery, error) {
	r, err := domain.ParseDateRange(c.QueryParam("date_from"), c.QueryParam("date_to"))
	if err != nil {
		return ports.InspectionQuery{}, err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return ports.InspectionQuery{}, err
	}
	line, err := queryInt(c, "line_number", 0)
	if err != nil {
		return ports.InspectionQuery{}, err
	}
	if limit < 0 {
		limit = 0
	}
	return ports.InspectionQuery{Range: r, Line: line, Limit: int64(limit)}, nil
}

// optionalType normalizes an inspection type query parameter; empty means all.
func optionalType(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	return domain.NormalizeInspectionType(raw)
}

// LineData returns the daily rows of one line and inspection station.
//
// @Summary      Line inspection data
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Param        line       path      int     true   "Line 1-4"
// @Param        type       path      string  true   "Pre-EL, Visual, Lam-QC or FQC"
// @Param        date_from  query     string  false  "YYYY-MM-DD"
// @Param        date_to    query     string  false  "YYYY-MM-DD"
// @Param        limit      query     int     false  "Maximum rows"
// @Success      200        {object}  lineDataResponse
// @Failure      400        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /qa/api/lines/{line}/{type} [get]
func (h *QAHandler) LineData(c echo.Context) error {
	line, err := pathInt(c, "line")
	if err != nil {
		return err
	}
	typ, err := domain.NormalizeInspectionType(c.Param("type"))
	if err != nil {
		return err
	}
	q, err := h.query(c)
	if err != nil {
		return err
	}
	rows, err := h.service.LineData(c.Request().Context(), line, typ, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lineDataResponse{
		LineNumber:     line,
		InspectionType: typ,
		TotalRecords:   len(rows),
		Data:           nonNilDocs(rows),
	})
}

// CombinedData returns the rows of every line for one station.
//
// @Summary      Combined inspection data
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Param        type         path      string  true   "Inspection type"
// @Param        date_from    query     string  false  "YYYY-MM-DD"
// @Param        date_to      query     string  false  "YYYY-MM-DD"
// @Param        line_number  query     int     false  "Restrict to one line"
// @Param        limit        query     int     false  "Maximum rows"
// @Success      200          {object}  combinedDataResponse
// @Failure      400          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Router       /qa/api/combined/{type} [get]
func (h *QAHandler) CombinedData(c echo.Context) error {
	typ, err := domain.NormalizeInspectionType(c.Param("type"))
	if err != nil {
		return err
	}
	q, err := h.query(c)
	if err != nil {
		return err
	}
	rows, err := h.service.CombinedData(c.Request().Context(), typ, q)
	if err != nil {
		return err
	}
	out := combinedDataResponse{InspectionType: typ, TotalRecords: len(rows), Data: nonNilDocs(rows)}
	if q.Line != 0 {
		out.LineFilter = &q.Line
	}
	return c.JSON(http.StatusOK, out)
}

// @Summary      Line summary
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Param        line  path      int     true  "Line 1-4"
// @Param        type  path      string  true  "Inspection type"
// @Success      200   {object}  object
// @Failure      404   {object}  errorResponse
// @Router       /qa/api/lines/{line}/{type}/summary [get]
func (h *QAHandler) LineSummary(c echo.Context) error {
	line, err := pathInt(c, "line")
	if err != nil {
		return err
	}
	typ, err := domain.NormalizeInspectionType(c.Param("type"))
	if err != nil {
		return err
	}
	doc, err := h.service.LineSummary(c.Request().Context(), line, typ)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// @Summary      Combined summary
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string  true  "Inspection type"
// @Success      200   {object}  object
// @Failure      404   {object}  errorResponse
// @Router       /qa/api/combined/{type}/summary [get]
func (h *QAHandler) CombinedSummary(c echo.Context) error {
	typ, err := domain.NormalizeInspectionType(c.Param("type"))
	if err != nil {
		return err
	}
	doc, err := h.service.CombinedSummary(c.Request().Context(), typ)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// Defects ranks defect columns by total count.
//
// @Summary      Defect analysis
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Param        type         path      string  true   "Inspection type"
// @Param        line_number  query     int     false  "Line; omitted for combined"
// @Param        top_n        query     int     false  "Defaults to 10"
// @Success      200          {object}  ports.DefectAnalysis
// @Failure      400          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Router       /qa/api/analysis/defects/{type} [get]
func (h *QAHandler) Defects(c echo.Context) error {
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
	out, err := h.service.DefectAnalysis(c.Request().Context(), typ, line, topN)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// Production reports production and rejection per station and line, keyed
// by inspection type and then "line_N".
//
// @Summary      Production overview
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Param        inspection_type  query     string  false  "Inspection type; omitted for all"
// @Param        line_number      query     int     false  "Line; omitted for all"
// @Success      200              {object}  map[string]map[string]ports.LineProduction
// @Failure      400              {object}  errorResponse
// @Router       /qa/api/analysis/production [get]
func (h *QAHandler) Production(c echo.Context) error {
	typ, err := optionalType(c.QueryParam("inspection_type"))
	if err != nil {
		return err
	}
	line, err := queryInt(c, "line_number", 0)
	if err != nil {
		return err
	}
	if line != 0 {
		if err := domain.ValidateLine(line); err != nil {
			return err
		}
	}
	stats, err := h.service.Production(c.Request().Context(), typ, line)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// DateRange returns one metric series per line over a date range, keyed by
// "line_N". Lines without rows in range are omitted.
//
// @Summary      Metric series by date range
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Param        date_from        query     string  true   "YYYY-MM-DD"
// @Param        date_to          query     string  true   "YYYY-MM-DD"
// @Param        inspection_type  query     string  false  "Defaults to Pre-EL"
// @Param        metric           query     string  false  "Defaults to Total rejection"
// @Success      200              {object}  map[string]ports.MetricSeries
// @Failure      400              {object}  errorResponse
// @Router       /qa/api/data/date-range [get]
func (h *QAHandler) DateRange(c echo.Context) error {
	r, err := domain.ParseRequiredDateRange(c.QueryParam("date_from"), c.QueryParam("date_to"))
	if err != nil {
		return err
	}
	typ, err := optionalType(c.QueryParam("inspection_type"))
	if err != nil {
		return err
	}
	if typ == "" {
		typ = domain.InspectionTypes[0]
	}
	series, err := h.service.DateRangeSeries(c.Request().Context(), r, typ, c.QueryParam("metric"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, series)
}

// @Summary      Inspection collections
// @Tags         qa
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.CollectionGroups
// @Router       /qa/api/collections [get]
func (h *QAHandler) Collections(c echo.Context) error {
	groups, err := h.service.Collections(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}
