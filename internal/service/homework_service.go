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

// CreateHomeworkRequest represents payload for creating homework.
type CreateHomeworkRequest struct {
	Name    string `json:"name" validate:"required"`
	DueDate string `json:"due_date" validate:"required"`
	Class   string `json:"class" validate:"required"`
}

// UpdateHomeworkRequest represents payload for editing homework.
type UpdateHomeworkRequest struct {
	Name    string `json:"name" validate:"required"`
	DueDate string `json:"due_date" validate:"required"`
	Class   string `json:"class" validate:"required"`
}

// HomeworkService orchestrates homework CRUD and triggers assignment
// fan-out on creation.
type HomeworkService struct {
	homework  homeworkRepository
	fanout    *FanoutService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHomeworkService constructs a HomeworkService.
func NewHomeworkService(homework homeworkRepository, fanout *FanoutService, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{homework: homework, fanout: fanout, validator: validate, logger: logger}
}

// Create persists a homework item for the session's active teacher and fans
// it out to the matching class roster. Returns the item plus the number of
// students it was assigned to.
func (s *HomeworkService) Create(ctx context.Context, session models.SessionContext, req CreateHomeworkRequest) (*models.Homework, int, error) {
	if session.ActiveTeacherID == "" {
		return nil, 0, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.DueDate = strings.TrimSpace(req.DueDate)
	req.Class = strings.TrimSpace(req.Class)
	if err := s.validator.Struct(req); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, due date and class are required")
	}

	hw := &models.Homework{
		Name:           req.Name,
		DueDate:        req.DueDate,
		Class:          req.Class,
		OwnerTeacherID: session.ActiveTeacherID,
	}
	if err := s.homework.Create(ctx, hw); err != nil {
		return nil, 0, appErrors.Store(err, "failed to save homework")
	}

	assigned, err := s.fanout.OnHomeworkCreated(ctx, hw)
	if err != nil {
		// The document is committed; only the fan-out query failed. A
		// retried creation is not safe (it would duplicate the item), so
		// surface the failure with the record attached.
		return hw, 0, err
	}
	return hw, assigned, nil
}

// List returns the active teacher's homework.
func (s *HomeworkService) List(ctx context.Context, session models.SessionContext) ([]models.Homework, error) {
	if session.ActiveTeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	items, err := s.homework.ListByOwner(ctx, session.ActiveTeacherID)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list homework")
	}
	return items, nil
}

// Update overwrites name, due date and class. Last write wins; editing the
// class does not re-run fan-out for the new class.
func (s *HomeworkService) Update(ctx context.Context, session models.SessionContext, id string, req UpdateHomeworkRequest) (*models.Homework, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.DueDate = strings.TrimSpace(req.DueDate)
	req.Class = strings.TrimSpace(req.Class)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, due date and class are required")
	}

	hw, err := s.findOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if err := s.homework.Update(ctx, hw.ID, req.Name, req.DueDate, req.Class); err != nil {
		return nil, appErrors.Store(err, "failed to update homework")
	}
	hw.Name = req.Name
	hw.DueDate = req.DueDate
	hw.Class = req.Class
	return hw, nil
}

// Delete removes a single homework item; the repository cascades the id out
// of every student's relation sets.
func (s *HomeworkService) Delete(ctx context.Context, session models.SessionContext, id string) error {
	if session.ActiveTeacherID == "" {
		return appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	if err := s.homework.Delete(ctx, session.ActiveTeacherID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return appErrors.Store(err, "failed to delete homework")
	}
	return nil
}

func (s *HomeworkService) findOwned(ctx context.Context, session models.SessionContext, id string) (*models.Homework, error) {
	if session.ActiveTeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	hw, err := s.homework.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return nil, appErrors.Store(err, "failed to load homework")
	}
	if hw.OwnerTeacherID != session.ActiveTeacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
	}
	return hw, nil
}
