package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

func homeworkFixture() (*fakeStudentRepo, *fakeHomeworkRepo, *HomeworkService) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	fanout := NewFanoutService(students, homework, nil, zap.NewNop())
	svc := NewHomeworkService(homework, fanout, validator.New(), zap.NewNop())
	return students, homework, svc
}

func TestHomeworkCreateFansOutToClass(t *testing.T) {
	students, homework, svc := homeworkFixture()
	alice := students.put(models.Student{Name: "Alice", Class: "5B", OwnerTeacherID: "t1"})
	students.put(models.Student{Name: "Carol", Class: "6A", OwnerTeacherID: "t1"})
	students.put(models.Student{Name: "Zed", Class: "5B", OwnerTeacherID: "t2"})

	session := models.SessionContext{ActiveTeacherID: "t1"}
	hw, assigned, err := svc.Create(context.Background(), session, CreateHomeworkRequest{
		Name:    "Math p.12",
		DueDate: "2026-09-15",
		Class:   "5B",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, assigned)
	require.NotEmpty(t, hw.ID)

	assert.True(t, students.items[alice.ID].HasAssigned(hw.ID))
	_, ok := homework.items[hw.ID]
	assert.True(t, ok)
}

func TestHomeworkCreateValidation(t *testing.T) {
	_, _, svc := homeworkFixture()
	session := models.SessionContext{ActiveTeacherID: "t1"}
	_, _, err := svc.Create(context.Background(), session, CreateHomeworkRequest{Name: "Math"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestHomeworkUpdateDoesNotRefanout(t *testing.T) {
	students, homework, svc := homeworkFixture()
	students.put(models.Student{Name: "Carol", Class: "6A", OwnerTeacherID: "t1"})
	hw := homework.put(models.Homework{Name: "Math p.12", DueDate: "2026-09-15", Class: "5B", OwnerTeacherID: "t1"})

	session := models.SessionContext{ActiveTeacherID: "t1"}
	updated, err := svc.Update(context.Background(), session, hw.ID, UpdateHomeworkRequest{
		Name:    "Math p.13",
		DueDate: "2026-09-16",
		Class:   "6A",
	})
	require.NoError(t, err)
	assert.Equal(t, "6A", updated.Class)

	// Moving the item to 6A does not assign it to 6A students.
	assert.Zero(t, students.addAssignedCalls)
}

func TestHomeworkDeleteScopedToOwner(t *testing.T) {
	_, homework, svc := homeworkFixture()
	foreign := homework.put(models.Homework{Name: "Other", DueDate: "2026-09-15", Class: "5B", OwnerTeacherID: "t2"})

	session := models.SessionContext{ActiveTeacherID: "t1"}
	err := svc.Delete(context.Background(), session, foreign.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestHomeworkList(t *testing.T) {
	_, homework, svc := homeworkFixture()
	homework.put(models.Homework{Name: "Math p.12", DueDate: "2026-09-15", Class: "5B", OwnerTeacherID: "t1"})
	homework.put(models.Homework{Name: "Foreign", DueDate: "2026-09-15", Class: "5B", OwnerTeacherID: "t2"})

	items, err := svc.List(context.Background(), models.SessionContext{ActiveTeacherID: "t1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Math p.12", items[0].Name)
}
