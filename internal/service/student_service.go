package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// CreateStudentRequest represents payload for enrolling a student.
type CreateStudentRequest struct {
	Name  string `json:"name" validate:"required"`
	Class string `json:"class" validate:"required"`
}

// UpdateStudentRequest represents payload for editing a student.
type UpdateStudentRequest struct {
	Name  string `json:"name" validate:"required"`
	Class string `json:"class" validate:"required"`
}

// StudentService orchestrates student CRUD, roster import, and the
// backfill fan-out that assigns existing class homework to new students.
type StudentService struct {
	students   studentRepository
	fanout     *FanoutService
	validator  *validator.Validate
	logger     *zap.Logger
	importRows int
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepository, fanout *FanoutService, validate *validator.Validate, logger *zap.Logger, importRows int) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if importRows <= 0 {
		importRows = 500
	}
	return &StudentService{
		students:   students,
		fanout:     fanout,
		validator:  validate,
		logger:     logger,
		importRows: importRows,
	}
}

// Create enrolls a student with empty relation sets, then backfills the
// assigned set with the class's existing homework. Backfill failures are
// logged and not retried; the student record itself stands.
func (s *StudentService) Create(ctx context.Context, session models.SessionContext, req CreateStudentRequest) (*models.Student, error) {
	if session.ActiveTeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Class = strings.TrimSpace(req.Class)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and class are required")
	}

	student := &models.Student{
		Name:           req.Name,
		Class:          req.Class,
		OwnerTeacherID: session.ActiveTeacherID,
		Assigned:       []string{},
		Completed:      []string{},
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Store(err, "failed to save student")
	}

	if err := s.fanout.OnStudentCreated(ctx, student); err != nil {
		s.logger.Warn("homework backfill failed",
			zap.String("student_id", student.ID),
			zap.Error(err))
	}
	return student, nil
}

// List returns the active teacher's students.
func (s *StudentService) List(ctx context.Context, session models.SessionContext) ([]models.Student, error) {
	if session.ActiveTeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	students, err := s.students.ListByOwner(ctx, session.ActiveTeacherID)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list students")
	}
	return students, nil
}

// Update overwrites name and class. Last write wins; the relation sets are
// untouched and moving class does not re-run any fan-out.
func (s *StudentService) Update(ctx context.Context, session models.SessionContext, id string, req UpdateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Class = strings.TrimSpace(req.Class)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and class are required")
	}

	student, err := s.findOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if err := s.students.Update(ctx, student.ID, req.Name, req.Class); err != nil {
		return nil, appErrors.Store(err, "failed to update student")
	}
	student.Name = req.Name
	student.Class = req.Class
	return student, nil
}

// Delete removes a single student document.
func (s *StudentService) Delete(ctx context.Context, session models.SessionContext, id string) error {
	student, err := s.findOwned(ctx, session, id)
	if err != nil {
		return err
	}
	if err := s.students.Delete(ctx, student.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Store(err, "failed to delete student")
	}
	return nil
}

// ImportRoster enrolls students from CSV content of name,class rows. Rows
// missing either field are skipped; each imported student goes through the
// normal create path including homework backfill. Returns the number of
// students imported; a store failure aborts the remainder.
func (s *StudentService) ImportRoster(ctx context.Context, session models.SessionContext, r io.Reader) (int, error) {
	if session.ActiveTeacherID == "" {
		return 0, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	imported := 0
	for imported < s.importRows {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed CSV content")
		}
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		class := strings.TrimSpace(record[1])
		if name == "" || class == "" {
			continue
		}

		if _, err := s.Create(ctx, session, CreateStudentRequest{Name: name, Class: class}); err != nil {
			return imported, err
		}
		imported++
	}

	s.logger.Info("roster imported",
		zap.String("owner", session.ActiveTeacherID),
		zap.Int("students", imported))
	return imported, nil
}

func (s *StudentService) findOwned(ctx context.Context, session models.SessionContext, id string) (*models.Student, error) {
	if session.ActiveTeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Store(err, "failed to load student")
	}
	if student.OwnerTeacherID != session.ActiveTeacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return student, nil
}
