package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// TrackingSelector scopes a tracking view to one homework item within one of
// a teacher's classes. All three fields are required.
type TrackingSelector struct {
	OwnerTeacherID string
	Class          string
	HomeworkID     string
}

func (sel TrackingSelector) validate() error {
	switch {
	case strings.TrimSpace(sel.OwnerTeacherID) == "":
		return appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	case strings.TrimSpace(sel.Class) == "":
		return appErrors.Clone(appErrors.ErrContextMissing, "tracking view requires a class")
	case strings.TrimSpace(sel.HomeworkID) == "":
		return appErrors.Clone(appErrors.ErrContextMissing, "tracking view requires a homework id")
	}
	return nil
}

// TrackingRow is one student's status within a tracking view.
type TrackingRow struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Complete  bool   `json:"complete"`
}

// TrackingView is the projection of assignment/completion status for one
// (teacher, class, homework) selector.
type TrackingView struct {
	HomeworkID     string        `json:"homework_id"`
	Rows           []TrackingRow `json:"rows"`
	CompletedCount int           `json:"completed_count"`
	TotalCount     int           `json:"total_count"`
}

// TrackingService computes live tracking views over the student roster and
// flips completion membership. It never mutates local projection state
// optimistically; callers observe changes through the next snapshot.
type TrackingService struct {
	students studentRepository
	homework homeworkRepository
	logger   *zap.Logger
}

// NewTrackingService constructs a TrackingService.
func NewTrackingService(students studentRepository, homework homeworkRepository, logger *zap.Logger) *TrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingService{students: students, homework: homework, logger: logger}
}

// projectTracking derives the view from a roster snapshot: students not
// assigned the homework are filtered out even though they match on class,
// and rows keep store-delivered order.
func projectTracking(roster []models.Student, homeworkID string) TrackingView {
	view := TrackingView{HomeworkID: homeworkID, Rows: []TrackingRow{}}
	for i := range roster {
		student := &roster[i]
		if !student.HasAssigned(homeworkID) {
			continue
		}
		complete := student.HasCompleted(homeworkID)
		view.Rows = append(view.Rows, TrackingRow{
			StudentID: student.ID,
			Name:      student.Name,
			Class:     student.Class,
			Complete:  complete,
		})
		view.TotalCount++
		if complete {
			view.CompletedCount++
		}
	}
	return view
}

// Snapshot computes the tracking view from a one-shot roster query.
func (s *TrackingService) Snapshot(ctx context.Context, sel TrackingSelector) (*TrackingView, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}
	roster, err := s.students.ListByOwnerAndClass(ctx, sel.OwnerTeacherID, sel.Class)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load class roster")
	}
	view := projectTracking(roster, sel.HomeworkID)
	return &view, nil
}

// Watch opens a live subscription for the selector. Every roster change
// triggers a full recomputation of the view; the channel closes when ctx is
// cancelled, which releases the underlying stream.
func (s *TrackingService) Watch(ctx context.Context, sel TrackingSelector) (<-chan TrackingView, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}
	snapshots, err := s.students.Watch(ctx, sel.OwnerTeacherID, sel.Class)
	if err != nil {
		return nil, appErrors.Store(err, "failed to open roster subscription")
	}

	views := make(chan TrackingView, 1)
	go func() {
		defer close(views)
		for roster := range snapshots {
			select {
			case views <- projectTracking(roster, sel.HomeworkID):
			case <-ctx.Done():
				return
			}
		}
	}()
	return views, nil
}

// ToggleCompletion flips the homework's membership in the student's
// completed set. The flip is a set-level add or remove, so it composes with
// concurrent fan-out and toggles on the same document. Toggling a homework
// the student is not assigned is refused, preserving completed ⊆ assigned.
func (s *TrackingService) ToggleCompletion(ctx context.Context, sel TrackingSelector, studentID string) (bool, error) {
	if err := sel.validate(); err != nil {
		return false, err
	}
	if strings.TrimSpace(studentID) == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return false, appErrors.Store(err, "failed to load student")
	}
	if student.OwnerTeacherID != sel.OwnerTeacherID {
		return false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if !student.HasAssigned(sel.HomeworkID) {
		return false, appErrors.Clone(appErrors.ErrValidation, "homework is not assigned to this student")
	}

	if student.HasCompleted(sel.HomeworkID) {
		if err := s.students.RemoveCompleted(ctx, studentID, sel.HomeworkID); err != nil {
			return false, appErrors.Store(err, "failed to unmark completion")
		}
		return false, nil
	}
	if err := s.students.AddCompleted(ctx, studentID, sel.HomeworkID); err != nil {
		return false, appErrors.Store(err, "failed to mark completion")
	}
	return true, nil
}

// HomeworkContext resolves the homework document backing the view header.
func (s *TrackingService) HomeworkContext(ctx context.Context, sel TrackingSelector) (*models.Homework, error) {
	if err := sel.validate(); err != nil {
		return nil, err
	}
	hw, err := s.homework.FindByID(ctx, sel.HomeworkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Store(err, "failed to load assignment")
	}
	if hw.OwnerTeacherID != sel.OwnerTeacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return hw, nil
}
