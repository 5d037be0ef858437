package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// UpdateProfileRequest represents payload for profile edits. Email is
// read-only once registered.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

// TeacherService serves the active teacher's own profile.
type TeacherService struct {
	teachers  teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(teachers teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{teachers: teachers, validator: validate, logger: logger}
}

// Profile returns the teacher record the session is currently acting as.
func (s *TeacherService) Profile(ctx context.Context, session models.SessionContext) (*models.Teacher, error) {
	if session.ActiveTeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	teacher, err := s.teachers.FindByID(ctx, session.ActiveTeacherID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Store(err, "failed to load profile")
	}
	return teacher, nil
}

// UpdateProfile overwrites the display name. Last write wins.
func (s *TeacherService) UpdateProfile(ctx context.Context, session models.SessionContext, req UpdateProfileRequest) (*models.Teacher, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name cannot be empty")
	}

	teacher, err := s.Profile(ctx, session)
	if err != nil {
		return nil, err
	}
	if teacher.Name == req.Name {
		return teacher, nil
	}

	if err := s.teachers.UpdateName(ctx, teacher.ID, req.Name); err != nil {
		return nil, appErrors.Store(err, "failed to update profile")
	}
	teacher.Name = req.Name
	return teacher, nil
}
