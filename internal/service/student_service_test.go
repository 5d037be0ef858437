package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

func studentFixture() (*fakeStudentRepo, *fakeHomeworkRepo, *StudentService) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	fanout := NewFanoutService(students, homework, nil, zap.NewNop())
	svc := NewStudentService(students, fanout, validator.New(), zap.NewNop(), 100)
	return students, homework, svc
}

func TestStudentCreateBackfillsExistingHomework(t *testing.T) {
	students, homework, svc := studentFixture()
	hw := homework.put(models.Homework{Name: "Math p.12", Class: "5B", OwnerTeacherID: "t1"})
	homework.put(models.Homework{Name: "Science lab", Class: "6A", OwnerTeacherID: "t1"})

	session := models.SessionContext{SessionID: "sess", ActiveTeacherID: "t1"}
	student, err := svc.Create(context.Background(), session, CreateStudentRequest{Name: "Dave", Class: "5B"})
	require.NoError(t, err)
	require.NotEmpty(t, student.ID)

	stored := students.items[student.ID]
	assert.Equal(t, []string{hw.ID}, stored.Assigned)
	assert.Empty(t, stored.Completed)
}

func TestStudentCreateRequiresContext(t *testing.T) {
	_, _, svc := studentFixture()
	_, err := svc.Create(context.Background(), models.SessionContext{}, CreateStudentRequest{Name: "Dave", Class: "5B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrContextMissing.Code, appErrors.FromError(err).Code)
}

func TestStudentCreateValidation(t *testing.T) {
	_, _, svc := studentFixture()
	session := models.SessionContext{ActiveTeacherID: "t1"}
	_, err := svc.Create(context.Background(), session, CreateStudentRequest{Name: "  ", Class: "5B"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentUpdateScopedToOwner(t *testing.T) {
	students, _, svc := studentFixture()
	foreign := students.put(models.Student{Name: "Zed", Class: "5B", OwnerTeacherID: "t2"})

	session := models.SessionContext{ActiveTeacherID: "t1"}
	_, err := svc.Update(context.Background(), session, foreign.ID, UpdateStudentRequest{Name: "Zed", Class: "6A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "5B", students.items[foreign.ID].Class)
}

func TestStudentImportRoster(t *testing.T) {
	students, homework, svc := studentFixture()
	hw := homework.put(models.Homework{Name: "Math p.12", Class: "5B", OwnerTeacherID: "t1"})

	csvContent := strings.Join([]string{
		"Alice,5B",
		"",
		"Bob,5B",
		",6A",
		"NoClass,",
		"Carol,6A,extra-field",
	}, "\n")

	session := models.SessionContext{ActiveTeacherID: "t1"}
	imported, err := svc.ImportRoster(context.Background(), session, strings.NewReader(csvContent))
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	roster, err := students.ListByOwner(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, roster, 3)

	// Imported 5B students went through the normal backfill.
	for _, s := range roster {
		if s.Class == "5B" {
			assert.Equal(t, []string{hw.ID}, s.Assigned)
		}
	}
}

func TestStudentImportHonorsRowLimit(t *testing.T) {
	students := newFakeStudentRepo()
	homework := newFakeHomeworkRepo()
	fanout := NewFanoutService(students, homework, nil, zap.NewNop())
	svc := NewStudentService(students, fanout, validator.New(), zap.NewNop(), 2)

	csvContent := "A,5B\nB,5B\nC,5B\n"
	imported, err := svc.ImportRoster(context.Background(), models.SessionContext{ActiveTeacherID: "t1"}, strings.NewReader(csvContent))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
}

func TestStudentDelete(t *testing.T) {
	students, _, svc := studentFixture()
	victim := students.put(models.Student{Name: "Dave", Class: "5B", OwnerTeacherID: "t1"})

	session := models.SessionContext{ActiveTeacherID: "t1"}
	require.NoError(t, svc.Delete(context.Background(), session, victim.ID))

	_, ok := students.items[victim.ID]
	assert.False(t, ok)
}
