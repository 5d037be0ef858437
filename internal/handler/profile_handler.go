package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/service"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
	"github.com/classtrack/classtrack-api/pkg/response"
)

// ProfileHandler serves the active teacher's profile page: the record
// itself, the derived access projection, and the admin grant controls.
type ProfileHandler struct {
	teachers *service.TeacherService
	access   *service.AccessService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(teachers *service.TeacherService, access *service.AccessService) *ProfileHandler {
	return &ProfileHandler{teachers: teachers, access: access}
}

type roleGrantRequest struct {
	Email string `json:"email" binding:"required"`
}

// Get godoc
// @Summary Get profile
// @Description Returns the active teacher's profile and access projection
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.teachers.Profile(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	access := h.access.DeriveAccess(profile, session)
	response.JSON(c, http.StatusOK, gin.H{"teacher": profile, "access": access}, nil)
}

// Update godoc
// @Summary Update profile
// @Description Overwrite the display name
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.teachers.UpdateProfile(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// Promote godoc
// @Summary Grant admin role
// @Description Promote the teacher with the exact email to admin
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body roleGrantRequest true "Target email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/admins [post]
func (h *ProfileHandler) Promote(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req roleGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "email is required"))
		return
	}

	teacher, err := h.access.Promote(c.Request.Context(), session, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, teacher, nil)
}

// Revoke godoc
// @Summary Revoke admin role
// @Description Remove admin rights from the teacher with the exact email
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body roleGrantRequest true "Target email"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/admins [delete]
func (h *ProfileHandler) Revoke(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req roleGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "email is required"))
		return
	}

	teacher, err := h.access.Revoke(c.Request.Context(), session, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, teacher, nil)
}
