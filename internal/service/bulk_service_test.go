package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

func TestBulkSelectionCounts(t *testing.T) {
	svc := NewBulkService(newFakeStudentRepo(), newFakeHomeworkRepo(), zap.NewNop())

	count, err := svc.Select("sess", BulkStudents, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.Select("sess", BulkStudents, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-selecting an id is a no-op on the set.
	count, err = svc.Select("sess", BulkStudents, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = svc.Deselect("sess", BulkStudents, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Selections are scoped per session and per collection.
	assert.Zero(t, svc.Count("other", BulkStudents))
	assert.Zero(t, svc.Count("sess", BulkHomework))
}

func TestBulkSelectRejectsUnknownKind(t *testing.T) {
	svc := NewBulkService(newFakeStudentRepo(), newFakeHomeworkRepo(), zap.NewNop())
	_, err := svc.Select("sess", BulkKind("grades"), "a")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBulkCommitDeleteRemovesSelectionAndDocuments(t *testing.T) {
	students := newFakeStudentRepo()
	kept := students.put(models.Student{Name: "Alice", Class: "5B", OwnerTeacherID: "t1"})
	doomed := students.put(models.Student{Name: "Bob", Class: "5B", OwnerTeacherID: "t1"})

	svc := NewBulkService(students, newFakeHomeworkRepo(), zap.NewNop())
	_, err := svc.Select("sess", BulkStudents, doomed.ID)
	require.NoError(t, err)

	deleted, err := svc.CommitDelete(context.Background(), "sess", BulkStudents, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, ok := students.items[doomed.ID]
	assert.False(t, ok)
	_, ok = students.items[kept.ID]
	assert.True(t, ok)
	assert.Zero(t, svc.Count("sess", BulkStudents))
}

func TestBulkCommitDeleteFailureKeepsSelection(t *testing.T) {
	students := newFakeStudentRepo()
	doomed := students.put(models.Student{Name: "Bob", Class: "5B", OwnerTeacherID: "t1"})
	students.deleteBatchErr = errors.New("transaction aborted")

	svc := NewBulkService(students, newFakeHomeworkRepo(), zap.NewNop())
	_, err := svc.Select("sess", BulkStudents, doomed.ID)
	require.NoError(t, err)

	_, err = svc.CommitDelete(context.Background(), "sess", BulkStudents, "t1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStoreUnavailable.Code, appErrors.FromError(err).Code)

	// Nothing deleted, selection intact for a retry.
	_, ok := students.items[doomed.ID]
	assert.True(t, ok)
	assert.Equal(t, 1, svc.Count("sess", BulkStudents))
}

func TestBulkCommitDeleteEmptySelectionIsNoop(t *testing.T) {
	svc := NewBulkService(newFakeStudentRepo(), newFakeHomeworkRepo(), zap.NewNop())
	deleted, err := svc.CommitDelete(context.Background(), "sess", BulkHomework, "t1")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestBulkResetSelection(t *testing.T) {
	svc := NewBulkService(newFakeStudentRepo(), newFakeHomeworkRepo(), zap.NewNop())
	_, err := svc.Select("sess", BulkHomework, "a")
	require.NoError(t, err)

	svc.ResetSelection("sess", BulkHomework)
	assert.Zero(t, svc.Count("sess", BulkHomework))
}
