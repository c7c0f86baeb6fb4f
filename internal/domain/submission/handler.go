package submission

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Handler exposes the submission endpoints. Route names mirror the
// serverless functions the dashboard front end already calls.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the endpoints. The public group carries the
// admission form submit; the admin group carries the dashboard reads
// and writes, which the caller may gate behind token auth.
func (h *Handler) RegisterRoutes(public, admin *echo.Group) {
	public.POST("/submit-form", h.SubmitForm)

	admin.GET("/get-submissions", h.GetSubmissions)
	admin.POST("/update-submission", h.UpdateSubmission)
	admin.DELETE("/delete-submission", h.DeleteSubmission)
	admin.POST("/delete-submission", h.DeleteSubmission)
}

func (h *Handler) SubmitForm(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	created, err := h.svc.Create(c.Request().Context(), &sub)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "Missing required fields",
				"fields": vErr.Fields,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Error saving to database",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": created})
}

func (h *Handler) GetSubmissions(c echo.Context) error {
	subs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Error fetching submissions",
			"details": err.Error(),
		})
	}
	if subs == nil {
		subs = []*Submission{}
	}
	return c.JSON(http.StatusOK, echo.Map{"submissions": subs})
}

func (h *Handler) UpdateSubmission(c echo.Context) error {
	var sub Submission
	if err := c.Bind(&sub); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if sub.ID == uuid.Nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Submission ID is required"})
	}

	updated, err := h.svc.Update(c.Request().Context(), &sub)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "Missing required fields",
				"fields": vErr.Fields,
			})
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Submission not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":   "Error updating submission",
				"details": err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": updated})
}

// DeleteSubmission accepts the id from the query string (DELETE) or the
// body (POST), matching both call sites the dashboard uses.
func (h *Handler) DeleteSubmission(c echo.Context) error {
	idStr := c.QueryParam("id")
	if idStr == "" && c.Request().Method == http.MethodPost {
		var body struct {
			ID string `json:"id"`
		}
		if err := c.Bind(&body); err == nil {
			idStr = body.ID
		}
	}
	if idStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Submission ID is required"})
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid submission ID"})
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Submission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Error deleting submission",
			"details": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Submission deleted"})
}
