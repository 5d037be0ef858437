package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
)

func TestFanoutOnHomeworkCreated(t *testing.T) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	alice := students.put(models.Student{Name: "Alice", Class: "5B", OwnerTeacherID: "t1"})
	bob := students.put(models.Student{Name: "Bob", Class: "5B", OwnerTeacherID: "t1"})
	carol := students.put(models.Student{Name: "Carol", Class: "6A", OwnerTeacherID: "t1"})

	hw := homework.put(models.Homework{Name: "Math p.12", Class: "5B", OwnerTeacherID: "t1"})

	svc := NewFanoutService(students, homework, nil, zap.NewNop())
	updated, err := svc.OnHomeworkCreated(context.Background(), hw)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	assert.True(t, students.items[alice.ID].HasAssigned(hw.ID))
	assert.True(t, students.items[bob.ID].HasAssigned(hw.ID))
	assert.False(t, students.items[carol.ID].HasAssigned(hw.ID))
}

func TestFanoutOnHomeworkCreatedIsIdempotent(t *testing.T) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	alice := students.put(models.Student{Name: "Alice", Class: "5B", OwnerTeacherID: "t1"})
	hw := homework.put(models.Homework{Name: "Math p.12", Class: "5B", OwnerTeacherID: "t1"})

	svc := NewFanoutService(students, homework, nil, zap.NewNop())
	_, err := svc.OnHomeworkCreated(context.Background(), hw)
	require.NoError(t, err)
	_, err = svc.OnHomeworkCreated(context.Background(), hw)
	require.NoError(t, err)

	assert.Equal(t, []string{hw.ID}, students.items[alice.ID].Assigned)
}

func TestFanoutOnHomeworkCreatedSkipsFailedStudents(t *testing.T) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	students.put(models.Student{Name: "Alice", Class: "5B", OwnerTeacherID: "t1"})
	bob := students.put(models.Student{Name: "Bob", Class: "5B", OwnerTeacherID: "t1"})
	students.addAssignedErr[bob.ID] = errors.New("write timeout")

	hw := homework.put(models.Homework{Name: "Math p.12", Class: "5B", OwnerTeacherID: "t1"})

	svc := NewFanoutService(students, homework, nil, zap.NewNop())
	updated, err := svc.OnHomeworkCreated(context.Background(), hw)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.False(t, students.items[bob.ID].HasAssigned(hw.ID))
}

func TestFanoutOnStudentCreatedBackfillsClassHomework(t *testing.T) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	hw1 := homework.put(models.Homework{Name: "Math p.12", Class: "5B", OwnerTeacherID: "t1"})
	hw2 := homework.put(models.Homework{Name: "Reading ch.3", Class: "5B", OwnerTeacherID: "t1"})
	homework.put(models.Homework{Name: "Science lab", Class: "6A", OwnerTeacherID: "t1"})
	homework.put(models.Homework{Name: "Other teacher", Class: "5B", OwnerTeacherID: "t2"})

	dave := students.put(models.Student{Name: "Dave", Class: "5B", OwnerTeacherID: "t1"})

	svc := NewFanoutService(students, homework, nil, zap.NewNop())
	require.NoError(t, svc.OnStudentCreated(context.Background(), dave))

	got := students.items[dave.ID]
	assert.ElementsMatch(t, []string{hw1.ID, hw2.ID}, got.Assigned)
}

func TestFanoutOnStudentCreatedWithNoHomeworkIsNoop(t *testing.T) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	dave := students.put(models.Student{Name: "Dave", Class: "5B", OwnerTeacherID: "t1"})

	svc := NewFanoutService(students, homework, nil, zap.NewNop())
	require.NoError(t, svc.OnStudentCreated(context.Background(), dave))
	assert.Zero(t, students.addAssignedCalls)
}
