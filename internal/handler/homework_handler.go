package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// HomeworkHandler wires HTTP endpoints to the homework service and the bulk
// delete coordinator.
type HomeworkHandler struct {
	homework *service.HomeworkService
	bulk     *service.BulkService
}

// NewHomeworkHandler creates a new handler.
func NewHomeworkHandler(homework *service.HomeworkService, bulk *service.BulkService) *HomeworkHandler {
	return &HomeworkHandler{homework: homework, bulk: bulk}
}

// List godoc
// @Summary List homework
// @Description Fresh homework snapshot for the active teacher; resets any bulk selection
// @Tags Homework
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.homework.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.bulk.ResetSelection(session.SessionID, service.BulkHomework)

	response.JSON(c, http.StatusOK, items, map[string]interface{}{"count": len(items)})
}

// Create godoc
// @Summary Create homework
// @Description Create a homework item and fan it out to the matching class roster
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body service.CreateHomeworkRequest true "Homework payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid homework payload"))
		return
	}

	hw, assigned, err := h.homework.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, hw, map[string]interface{}{"assigned": assigned})
}

// Update godoc
// @Summary Update homework
// @Description Overwrite name, due date and class
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework id"
// @Param payload body service.UpdateHomeworkRequest true "Homework payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /homework/{id} [put]
func (h *HomeworkHandler) Update(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid homework payload"))
		return
	}

	hw, err := h.homework.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, hw, nil)
}

// Delete godoc
// @Summary Delete homework
// @Description Delete an item and cascade its id out of every student's sets
// @Tags Homework
// @Produce json
// @Param id path string true "Homework id"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.homework.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Selection godoc
// @Summary Toggle bulk selection
// @Description Add or remove a homework id from the session's delete selection
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body selectionRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /homework/selection [put]
func (h *HomeworkHandler) Selection(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}

	var (
		count int
		err   error
	)
	if req.Selected {
		count, err = h.bulk.Select(session.SessionID, service.BulkHomework, req.ID)
	} else {
		count, err = h.bulk.Deselect(session.SessionID, service.BulkHomework, req.ID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"selected": count}, nil)
}

// BulkDelete godoc
// @Summary Delete selected homework
// @Description Commit the session's selection as one atomic batch delete with cascade
// @Tags Homework
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /homework/bulk-delete [post]
func (h *HomeworkHandler) BulkDelete(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	deleted, err := h.bulk.CommitDelete(c.Request.Context(), session.SessionID, service.BulkHomework, session.ActiveTeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}
