package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// BGradeHandler serves the B-grade module analytics.
type BGradeHandler struct {
	service ports.BGradeService
}

func NewBGradeHandler(service ports.BGradeService) *BGradeHandler {
	return &BGradeHandler{service: service}
}

func (h *BGradeHandler) Register(g *echo.Group) {
	g.GET("/aggregated/grade-analysis", h.GradeAnalysis)
	g.GET("/aggregated/defect-analysis", h.DefectAnalysis)
	g.GET("/aggregated/daily-trend", h.DailyTrend)
	g.GET("/collections", h.Collections)
	g.GET("/data/:collection", h.CollectionData)
}

func bgradeRange(c echo.Context) (domain.DateRange, error) {
	return domain.ParseRequiredDateRange(c.QueryParam("start_date"), c.QueryParam("end_date"))
}

// GradeAnalysis counts modules per grade across the monthly collections.
//
// @Summary      Grade analysis
// @Tags         bgrade
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  true  "YYYY-MM-DD"
// @Param        end_date    query     string  true  "YYYY-MM-DD"
// @Success      200         {object}  gradeAnalysisResponse
// @Failure      400         {object}  errorResponse
// @Router       /bgrade/api/aggregated/grade-analysis [get]
func (h *BGradeHandler) GradeAnalysis(c echo.Context) error {
	r, err := bgradeRange(c)
	if err != nil {
		return err
	}
	out, err := h.service.GradeAnalysis(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, gradeAnalysisResponse{Success: true, GradeAnalysis: *out})
}

// DefectAnalysis ranks B-grade reasons. defect_reasons is an object whose
// keys are in descending count order.
//
// @Summary      B-grade reasons
// @Tags         bgrade
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  true   "YYYY-MM-DD"
// @Param        end_date    query     string  true   "YYYY-MM-DD"
// @Param        top_n       query     int     false  "Defaults to 10"
// @Success      200         {object}  reasonAnalysisResponse
// @Failure      400         {object}  errorResponse
// @Router       /bgrade/api/aggregated/defect-analysis [get]
func (h *BGradeHandler) DefectAnalysis(c echo.Context) error {
	r, err := bgradeRange(c)
	if err != nil {
		return err
	}
	topN, err := queryInt(c, "top_n", 10)
	if err != nil {
		return err
	}
	out, err := h.service.DefectAnalysis(c.Request().Context(), r, topN)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reasonAnalysisResponse{
		Success:         true,
		StartDate:       out.StartDate,
		EndDate:         out.EndDate,
		DefectReasons:   rankedCounts(out.DefectReasons),
		TotalBGrade:     out.TotalBGrade,
		TotalProduction: out.TotalProduction,
	})
}

// DailyTrend buckets records by day and grade, or by day and reason.
//
// @Summary      Daily trend
// @Tags         bgrade
// @Produce      json
// @Security     BearerAuth
// @Param        start_date     query     string  true   "YYYY-MM-DD"
// @Param        end_date       query     string  true   "YYYY-MM-DD"
// @Param        analysis_type  query     string  false  "b-grade or defect"
// @Success      200            {object}  trendResponse
// @Failure      400            {object}  errorResponse
// @Router       /bgrade/api/aggregated/daily-trend [get]
func (h *BGradeHandler) DailyTrend(c echo.Context) error {
	r, err := bgradeRange(c)
	if err != nil {
		return err
	}
	typ := c.QueryParam("analysis_type")
	if typ == "" {
		typ = domain.TrendByGrade
	}
	if typ != domain.TrendByGrade && typ != domain.TrendByReason {
		return echo.NewHTTPError(http.StatusBadRequest, "analysis_type must be 'b-grade' or 'defect'")
	}
	points, err := h.service.DailyTrend(c.Request().Context(), r, typ)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTrendResponse(typ, points))
}

// @Summary      B-grade collections
// @Tags         bgrade
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  bgradeCollectionsResponse
// @Router       /bgrade/api/collections [get]
func (h *BGradeHandler) Collections(c echo.Context) error {
	names, err := h.service.Collections(c.Request().Context())
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, bgradeCollectionsResponse{Success: true, Collections: names, Count: len(names)})
}

// CollectionData pages through one monthly collection.
//
// @Summary      B-grade records
// @Tags         bgrade
// @Produce      json
// @Security     BearerAuth
// @Param        collection  path      string  true   "e.g. jan_2025"
// @Param        limit       query     int     false  "Defaults to 100, at most 1000"
// @Param        skip        query     int     false  "Rows to skip"
// @Success      200         {object}  recordPageResponse
// @Failure      400         {object}  errorResponse
// @Router       /bgrade/api/data/{collection} [get]
func (h *BGradeHandler) CollectionData(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		return err
	}
	page, err := h.service.CollectionData(c.Request().Context(), c.Param("collection"), int64(limit), int64(skip))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recordPageResponse{
		Success:    true,
		Collection: page.Collection,
		Data:       nonNilDocs(page.Data),
		Count:      len(page.Data),
		Limit:      page.Limit,
		Skip:       page.Skip,
	})
}
