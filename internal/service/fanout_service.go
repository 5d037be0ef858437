package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// FanoutService propagates newly created entities into the assignment
// relation. Both directions rely purely on set-union updates, so replaying
// either operation never changes an already-correct assigned set.
type FanoutService struct {
	students studentRepository
	homework homeworkRepository
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewFanoutService constructs a FanoutService. metrics may be nil.
func NewFanoutService(students studentRepository, homework homeworkRepository, metrics *MetricsService, logger *zap.Logger) *FanoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FanoutService{students: students, homework: homework, metrics: metrics, logger: logger}
}

// OnHomeworkCreated links the persisted homework into the assigned set of
// every student currently enrolled in the matching class. Returns the number
// of students updated; zero matches is not an error. Per-student updates are
// independent: a failed one is logged and skipped, which leaves partial
// state that a retry repairs because the union is idempotent.
func (s *FanoutService) OnHomeworkCreated(ctx context.Context, hw *models.Homework) (int, error) {
	roster, err := s.students.ListByOwnerAndClass(ctx, hw.OwnerTeacherID, hw.Class)
	if err != nil {
		return 0, appErrors.Store(err, "failed to query class roster for fan-out")
	}

	updated := 0
	for _, student := range roster {
		if err := s.students.AddAssigned(ctx, student.ID, hw.ID); err != nil {
			s.logger.Warn("fan-out update failed",
				zap.String("student_id", student.ID),
				zap.String("homework_id", hw.ID),
				zap.Error(err))
			continue
		}
		updated++
	}

	s.metrics.RecordFanout("homework", updated)
	s.logger.Info("homework fanned out",
		zap.String("homework_id", hw.ID),
		zap.String("class", hw.Class),
		zap.Int("students_updated", updated))
	return updated, nil
}

// OnStudentCreated links every existing homework item of the student's class
// into the student's assigned set with a single union update, so ids added
// concurrently by racing fan-outs are preserved.
func (s *FanoutService) OnStudentCreated(ctx context.Context, student *models.Student) error {
	items, err := s.homework.ListByOwnerAndClass(ctx, student.OwnerTeacherID, student.Class)
	if err != nil {
		return appErrors.Store(err, "failed to query class homework for fan-out")
	}
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, hw := range items {
		ids[i] = hw.ID
	}

	if err := s.students.AddAssigned(ctx, student.ID, ids...); err != nil {
		return appErrors.Store(err, "failed to assign existing homework")
	}

	s.metrics.RecordFanout("student", len(ids))
	s.logger.Info("student backfilled with class homework",
		zap.String("student_id", student.ID),
		zap.String("class", student.Class),
		zap.Int("homework_count", len(ids)))
	return nil
}
