package dashboard

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/epaos/epaos/internal/domain/submission"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes the export endpoint. The export always runs against
// the filtered view, so the filter parameters mirror the dashboard's.
type Handler struct {
	svc *submission.Service
}

func NewHandler(svc *submission.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/export-submissions", h.ExportSubmissions)
}

// ExportSubmissions streams the current filtered view as CSV (default)
// or XLSX. Query parameters: name, start, end (YYYY-MM-DD), format.
// An empty view is refused with 409 and no file.
func (h *Handler) ExportSubmissions(c echo.Context) error {
	filter := Filter{Name: c.QueryParam("name")}

	if s := c.QueryParam("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid start date"})
		}
		filter.Start = &t
	}
	if s := c.QueryParam("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid end date"})
		}
		filter.End = &t
	}

	subs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Error fetching submissions",
			"details": err.Error(),
		})
	}
	view := filter.Apply(subs)

	var buf bytes.Buffer
	switch format := c.QueryParam("format"); format {
	case "", "csv":
		err = WriteCSV(&buf, view)
		if err == nil {
			c.Response().Header().Set(echo.HeaderContentDisposition,
				`attachment; filename="submissions_export.csv"`)
			return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		}
	case "xlsx":
		err = WriteXLSX(&buf, view)
		if err == nil {
			c.Response().Header().Set(echo.HeaderContentDisposition,
				`attachment; filename="submissions_export.xlsx"`)
			return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unsupported export format"})
	}

	if errors.Is(err, ErrNoData) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "There is no data to export"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"error":   "Error exporting submissions",
		"details": err.Error(),
	})
}
