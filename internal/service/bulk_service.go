package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// BulkKind names a deletable collection.
type BulkKind string

const (
	BulkStudents BulkKind = "students"
	BulkHomework BulkKind = "homework"
)

func (k BulkKind) valid() bool {
	return k == BulkStudents || k == BulkHomework
}

// BulkService coordinates multi-document deletes. Each session keeps a
// per-collection working set of selected ids; a commit turns the set into
// one all-or-nothing batch delete. Selections are reset whenever the owning
// list view serves a fresh snapshot, so a commit can never reference ids
// from a stale render.
type BulkService struct {
	students studentRepository
	homework homeworkRepository
	logger   *zap.Logger

	mu         sync.Mutex
	selections map[selectionKey]map[string]struct{}
}

type selectionKey struct {
	sessionID string
	kind      BulkKind
}

// NewBulkService constructs a BulkService.
func NewBulkService(students studentRepository, homework homeworkRepository, logger *zap.Logger) *BulkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkService{
		students:   students,
		homework:   homework,
		logger:     logger,
		selections: make(map[selectionKey]map[string]struct{}),
	}
}

// Select adds an id to the session's working set and returns the new count.
func (s *BulkService) Select(sessionID string, kind BulkKind, id string) (int, error) {
	if !kind.valid() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "unknown bulk collection")
	}
	if id == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "selection id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := selectionKey{sessionID: sessionID, kind: kind}
	set, ok := s.selections[key]
	if !ok {
		set = make(map[string]struct{})
		s.selections[key] = set
	}
	set[id] = struct{}{}
	return len(set), nil
}

// Deselect removes an id from the working set and returns the new count.
func (s *BulkService) Deselect(sessionID string, kind BulkKind, id string) (int, error) {
	if !kind.valid() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "unknown bulk collection")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := selectionKey{sessionID: sessionID, kind: kind}
	delete(s.selections[key], id)
	return len(s.selections[key]), nil
}

// Count returns the size of the session's working set.
func (s *BulkService) Count(sessionID string, kind BulkKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selections[selectionKey{sessionID: sessionID, kind: kind}])
}

// ResetSelection drops the working set. List handlers call this whenever
// they serve a fresh snapshot.
func (s *BulkService) ResetSelection(sessionID string, kind BulkKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, selectionKey{sessionID: sessionID, kind: kind})
}

// CommitDelete submits the working set as one atomic batch delete scoped to
// the owning teacher. An empty selection is a no-op, not an error. On
// success the selection is cleared; on failure nothing was deleted and the
// selection is kept for a retry.
func (s *BulkService) CommitDelete(ctx context.Context, sessionID string, kind BulkKind, ownerTeacherID string) (int, error) {
	if !kind.valid() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "unknown bulk collection")
	}
	if ownerTeacherID == "" {
		return 0, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}

	key := selectionKey{sessionID: sessionID, kind: kind}

	s.mu.Lock()
	ids := make([]string, 0, len(s.selections[key]))
	for id := range s.selections[key] {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return 0, nil
	}

	var err error
	switch kind {
	case BulkStudents:
		err = s.students.DeleteBatch(ctx, ownerTeacherID, ids)
	case BulkHomework:
		err = s.homework.DeleteBatch(ctx, ownerTeacherID, ids)
	}
	if err != nil {
		return 0, appErrors.Store(err, "bulk delete batch failed")
	}

	s.mu.Lock()
	delete(s.selections, key)
	s.mu.Unlock()

	s.logger.Info("bulk delete committed",
		zap.String("collection", string(kind)),
		zap.Int("count", len(ids)))
	return len(ids), nil
}
