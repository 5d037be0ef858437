package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// AdminHandler serves the admin page: the teacher directory and the
// impersonation controls.
type AdminHandler struct {
	access *service.AccessService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(access *service.AccessService) *AdminHandler {
	return &AdminHandler{access: access}
}

// ListTeachers godoc
// @Summary List all teachers
// @Description Full teacher directory, admin capability required
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/teachers [get]
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	teachers, err := h.access.ListTeachers(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, teachers, map[string]interface{}{"count": len(teachers)})
}

// Impersonate godoc
// @Summary Act as another teacher
// @Description Switch the session to the target teacher, parking the admin identity
// @Tags Admin
// @Produce json
// @Param id path string true "Target teacher id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/impersonate/{id} [post]
func (h *AdminHandler) Impersonate(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	updated, err := h.access.BeginImpersonation(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updated, nil)
}

// Return godoc
// @Summary Return to the admin identity
// @Description Pop the impersonation slot back into the active identity
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/impersonate [delete]
func (h *AdminHandler) Return(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	updated, err := h.access.EndImpersonation(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updated, nil)
}
