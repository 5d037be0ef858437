package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/export"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// TrackingHandler serves tracking views: one-shot snapshots, live SSE
// streams, completion toggles, and tabular exports.
type TrackingHandler struct {
	tracking *service.TrackingService
	metrics  *service.MetricsService
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
}

// NewTrackingHandler creates a new handler.
func NewTrackingHandler(tracking *service.TrackingService, metrics *service.MetricsService) *TrackingHandler {
	return &TrackingHandler{
		tracking: tracking,
		metrics:  metrics,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
	}
}

func (h *TrackingHandler) selector(c *gin.Context) (service.TrackingSelector, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return service.TrackingSelector{}, false
	}
	return service.TrackingSelector{
		OwnerTeacherID: session.ActiveTeacherID,
		Class:          c.Query("class"),
		HomeworkID:     c.Query("homework_id"),
	}, true
}

// Snapshot godoc
// @Summary Get tracking view
// @Description One-shot projection of completion status for a class and homework
// @Tags Tracking
// @Produce json
// @Param class query string true "Class label"
// @Param homework_id query string true "Homework id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tracking [get]
func (h *TrackingHandler) Snapshot(c *gin.Context) {
	sel, ok := h.selector(c)
	if !ok {
		return
	}

	view, err := h.tracking.Snapshot(c.Request.Context(), sel)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, map[string]interface{}{
		"summary": fmt.Sprintf("%d Sent / %d Total", view.CompletedCount, view.TotalCount),
	})
}

// Stream godoc
// @Summary Stream tracking view
// @Description Server-sent events pushing a recomputed view on every roster change
// @Tags Tracking
// @Produce text/event-stream
// @Param class query string true "Class label"
// @Param homework_id query string true "Homework id"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} response.Envelope
// @Router /tracking/stream [get]
func (h *TrackingHandler) Stream(c *gin.Context) {
	sel, ok := h.selector(c)
	if !ok {
		return
	}

	views, err := h.tracking.Watch(c.Request.Context(), sel)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case view, open := <-views:
			if !open {
				return false
			}
			c.SSEvent("tracking", view)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

type toggleRequest struct {
	StudentID string `json:"student_id" binding:"required"`
}

// Toggle godoc
// @Summary Toggle completion
// @Description Flip the homework's membership in the student's completed set
// @Tags Tracking
// @Accept json
// @Produce json
// @Param class query string true "Class label"
// @Param homework_id query string true "Homework id"
// @Param payload body toggleRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tracking/toggle [post]
func (h *TrackingHandler) Toggle(c *gin.Context) {
	sel, ok := h.selector(c)
	if !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "student id is required"))
		return
	}

	complete, err := h.tracking.ToggleCompletion(c.Request.Context(), sel, req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"student_id": req.StudentID, "complete": complete}, nil)
}

// Export godoc
// @Summary Export tracking view
// @Description Render the current view as CSV or PDF
// @Tags Tracking
// @Produce application/octet-stream
// @Param class query string true "Class label"
// @Param homework_id query string true "Homework id"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /tracking/export [get]
func (h *TrackingHandler) Export(c *gin.Context) {
	sel, ok := h.selector(c)
	if !ok {
		return
	}

	hw, err := h.tracking.HomeworkContext(c.Request.Context(), sel)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.tracking.Snapshot(c.Request.Context(), sel)
	if err != nil {
		response.Error(c, err)
		return
	}

	data := export.Dataset{
		Headers: []string{"Student", "Class", "Status"},
		Rows:    make([]map[string]string, 0, len(view.Rows)),
	}
	for _, row := range view.Rows {
		status := "Pending"
		if row.Complete {
			status = "Complete"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student": row.Name,
			"Class":   row.Class,
			"Status":  status,
		})
	}

	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := h.pdf.Render(data, hw.Name)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tracking.pdf"))
		c.Data(http.StatusOK, "application/pdf", payload)
	case "csv":
		payload, err := h.csv.Render(data)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tracking.csv"))
		c.Data(http.StatusOK, "text/csv", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
