package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

type PeelHandler struct {
	service ports.PeelService
}

func NewPeelHandler(service ports.PeelService) *PeelHandler {
	return &PeelHandler{service: service}
}

func (h *PeelHandler) Register(g *echo.Group) {
	g.GET("/data", h.Data)
	g.GET("/date/:date/shift/:shift", h.ByDateShift)
	g.GET("/graph-data", h.Graph)
	g.GET("/collections", h.Collections)
}

// Data returns raw peel measurements of one day.
//
// @Summary      Peel measurements
// @Tags         peel
// @Produce      json
// @Security     BearerAuth
// @Param        date      query     string  true   "YYYY-MM-DD"
// @Param        shift     query     string  false  "A, B or C"
// @Param        stringer  query     int     false  "1-12"
// @Param        unit      query     string  false  "A or B"
// @Success      200       {object}  peelDataResponse
// @Failure      400       {object}  errorResponse
// @Router       /peel/data [get]
func (h *PeelHandler) Data(c echo.Context) error {
	stringer, err := queryInt(c, "stringer", 0)
	if err != nil {
		return err
	}
	q := domain.PeelQuery{
		Date:     c.QueryParam("date"),
		Shift:    c.QueryParam("shift"),
		Stringer: stringer,
		Unit:     c.QueryParam("unit"),
	}
	rows, err := h.service.Data(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, peelDataResponse{
		Status:  statusSuccess,
		Message: noDataMessage(rows, q.Date),
		Filters: q.Filter(),
		Count:   len(rows),
		Data:    nonNilDocs(rows),
	})
}

// @Summary      Peel measurements by shift
// @Tags         peel
// @Produce      json
// @Security     BearerAuth
// @Param        date   path      string  true  "YYYY-MM-DD"
// @Param        shift  path      string  true  "A, B or C"
// @Success      200    {object}  peelDataResponse
// @Failure      400    {object}  errorResponse
// @Router       /peel/date/{date}/shift/{shift} [get]
func (h *PeelHandler) ByDateShift(c echo.Context) error {
	q := domain.PeelQuery{Date: c.Param("date"), Shift: strings.ToUpper(c.Param("shift"))}
	rows, err := h.service.Data(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, peelDataResponse{
		Status:  statusSuccess,
		Message: noDataMessage(rows, q.Date+" - Shift "+q.Shift),
		Date:    q.Date,
		Shift:   q.Shift,
		Count:   len(rows),
		Data:    nonNilDocs(rows),
	})
}

func noDataMessage(rows []ports.Document, what string) string {
	if len(rows) > 0 {
		return ""
	}
	return "No data available for " + what
}

func graphQuery(c echo.Context) (domain.GraphQuery, error) {
	year, err := queryInt(c, "year", time.Now().Year())
	if err != nil {
		return domain.GraphQuery{}, err
	}
	stringer, err := queryInt(c, "stringer", 0)
	if err != nil {
		return domain.GraphQuery{}, err
	}
	face := c.QueryParam("cell_face")
	if face == "" {
		face = domain.FaceBoth
	}
	q := domain.GraphQuery{Month: c.QueryParam("month"), Year: year, Stringer: stringer, Face: face}
	if err := q.Normalize(); err != nil {
		return domain.GraphQuery{}, err
	}
	return q, nil
}

// Graph returns the per-day peel strength series of one stringer.
//
// @Summary      Peel graph data
// @Tags         peel
// @Produce      json
// @Security     BearerAuth
// @Param        month      query     string  true   "jan..dec"
// @Param        year       query     int     false  "Defaults to the current year"
// @Param        stringer   query     int     true   "1-12"
// @Param        cell_face  query     string  false  "front, back or both"
// @Success      200        {object}  peelGraphResponse
// @Failure      400        {object}  errorResponse
// @Router       /peel/graph-data [get]
func (h *PeelHandler) Graph(c echo.Context) error {
	q, err := graphQuery(c)
	if err != nil {
		return err
	}
	points, err := h.service.Graph(c.Request().Context(), q)
	if err != nil {
		return err
	}
	out := peelGraphResponse{
		Status:    statusSuccess,
		Month:     q.Month,
		Year:      q.Year,
		Stringer:  q.Stringer,
		CellFace:  q.Face,
		TotalDays: len(points),
		Data:      points,
	}
	if len(points) == 0 {
		out.Data = []domain.GraphPoint{}
		out.Message = fmt.Sprintf("No data available for stringer %d in %s", q.Stringer, q.Collection())
	}
	return c.JSON(http.StatusOK, out)
}

// @Summary      Peel collections
// @Tags         peel
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  peelCollectionsResponse
// @Router       /peel/collections [get]
func (h *PeelHandler) Collections(c echo.Context) error {
	counts, err := h.service.Collections(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPeelCollectionsResponse(counts))
}
