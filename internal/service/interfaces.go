package service

import (
	"context"

	"github.com/classtrack/classtrack-api/internal/models"
)

// Narrow store-facing interfaces consumed by the services. The mongo-backed
// implementations live in internal/repository; tests substitute in-memory
// fakes.

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByOwner(ctx context.Context, ownerTeacherID string) ([]models.Student, error)
	ListByOwnerAndClass(ctx context.Context, ownerTeacherID, class string) ([]models.Student, error)
	Update(ctx context.Context, id, name, class string) error
	AddAssigned(ctx context.Context, studentID string, homeworkIDs ...string) error
	AddCompleted(ctx context.Context, studentID, homeworkID string) error
	RemoveCompleted(ctx context.Context, studentID, homeworkID string) error
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ownerTeacherID string, ids []string) error
	Watch(ctx context.Context, ownerTeacherID, class string) (<-chan []models.Student, error)
}

type homeworkRepository interface {
	Create(ctx context.Context, hw *models.Homework) error
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	ListByOwner(ctx context.Context, ownerTeacherID string) ([]models.Homework, error)
	ListByOwnerAndClass(ctx context.Context, ownerTeacherID, class string) ([]models.Homework, error)
	Update(ctx context.Context, id, name, dueDate, class string) error
	Delete(ctx context.Context, ownerTeacherID, id string) error
	DeleteBatch(ctx context.Context, ownerTeacherID string, ids []string) error
}

type teacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.Teacher, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateRole(ctx context.Context, id string, role models.TeacherRole) error
}

type sessionRepository interface {
	Save(ctx context.Context, session models.SessionContext) error
	Find(ctx context.Context, sessionID string) (*models.SessionContext, error)
	Delete(ctx context.Context, sessionID string) error
}
