package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
)

// In-memory fakes for the store-facing interfaces. Maps are keyed by id;
// insertion order is kept so listings are deterministic.

type fakeStudentRepo struct {
	items map[string]*models.Student
	order []string

	createErr      error
	addAssignedErr map[string]error
	deleteBatchErr error
	snapshots      chan []models.Student

	addAssignedCalls int
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{
		items:          make(map[string]*models.Student),
		addAssignedErr: make(map[string]error),
	}
}

func (f *fakeStudentRepo) put(student models.Student) *models.Student {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if _, ok := f.items[student.ID]; !ok {
		f.order = append(f.order, student.ID)
	}
	cp := student
	f.items[student.ID] = &cp
	return &cp
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now()
	student.CreatedAt = now
	student.UpdatedAt = now
	f.put(*student)
	return nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := f.items[id]; ok {
		cp := *student
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStudentRepo) ListByOwner(ctx context.Context, ownerTeacherID string) ([]models.Student, error) {
	var out []models.Student
	for _, id := range f.order {
		if s, ok := f.items[id]; ok && s.OwnerTeacherID == ownerTeacherID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) ListByOwnerAndClass(ctx context.Context, ownerTeacherID, class string) ([]models.Student, error) {
	var out []models.Student
	for _, id := range f.order {
		if s, ok := f.items[id]; ok && s.OwnerTeacherID == ownerTeacherID && s.Class == class {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, id, name, class string) error {
	s, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Name = name
	s.Class = class
	return nil
}

func (f *fakeStudentRepo) AddAssigned(ctx context.Context, studentID string, homeworkIDs ...string) error {
	f.addAssignedCalls++
	if err := f.addAssignedErr[studentID]; err != nil {
		return err
	}
	s, ok := f.items[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, hwID := range homeworkIDs {
		if !s.HasAssigned(hwID) {
			s.Assigned = append(s.Assigned, hwID)
		}
	}
	return nil
}

func (f *fakeStudentRepo) AddCompleted(ctx context.Context, studentID, homeworkID string) error {
	s, ok := f.items[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	if !s.HasCompleted(homeworkID) {
		s.Completed = append(s.Completed, homeworkID)
	}
	return nil
}

func (f *fakeStudentRepo) RemoveCompleted(ctx context.Context, studentID, homeworkID string) error {
	s, ok := f.items[studentID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := s.Completed[:0]
	for _, id := range s.Completed {
		if id != homeworkID {
			kept = append(kept, id)
		}
	}
	s.Completed = kept
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStudentRepo) DeleteBatch(ctx context.Context, ownerTeacherID string, ids []string) error {
	if f.deleteBatchErr != nil {
		return f.deleteBatchErr
	}
	for _, id := range ids {
		if s, ok := f.items[id]; ok && s.OwnerTeacherID == ownerTeacherID {
			delete(f.items, id)
		}
	}
	return nil
}

func (f *fakeStudentRepo) Watch(ctx context.Context, ownerTeacherID, class string) (<-chan []models.Student, error) {
	if f.snapshots == nil {
		f.snapshots = make(chan []models.Student, 8)
	}
	return f.snapshots, nil
}

type fakeHomeworkRepo struct {
	items map[string]*models.Homework
	order []string

	deleteBatchErr error
}

func newFakeHomeworkRepo() *fakeHomeworkRepo {
	return &fakeHomeworkRepo{items: make(map[string]*models.Homework)}
}

func (f *fakeHomeworkRepo) put(hw models.Homework) *models.Homework {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	if _, ok := f.items[hw.ID]; !ok {
		f.order = append(f.order, hw.ID)
	}
	cp := hw
	f.items[hw.ID] = &cp
	return &cp
}

func (f *fakeHomeworkRepo) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now()
	hw.CreatedAt = now
	hw.UpdatedAt = now
	f.put(*hw)
	return nil
}

func (f *fakeHomeworkRepo) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	if hw, ok := f.items[id]; ok {
		cp := *hw
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeHomeworkRepo) ListByOwner(ctx context.Context, ownerTeacherID string) ([]models.Homework, error) {
	var out []models.Homework
	for _, id := range f.order {
		if hw, ok := f.items[id]; ok && hw.OwnerTeacherID == ownerTeacherID {
			out = append(out, *hw)
		}
	}
	return out, nil
}

func (f *fakeHomeworkRepo) ListByOwnerAndClass(ctx context.Context, ownerTeacherID, class string) ([]models.Homework, error) {
	var out []models.Homework
	for _, id := range f.order {
		if hw, ok := f.items[id]; ok && hw.OwnerTeacherID == ownerTeacherID && hw.Class == class {
			out = append(out, *hw)
		}
	}
	return out, nil
}

func (f *fakeHomeworkRepo) Update(ctx context.Context, id, name, dueDate, class string) error {
	hw, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	hw.Name = name
	hw.DueDate = dueDate
	hw.Class = class
	return nil
}

func (f *fakeHomeworkRepo) Delete(ctx context.Context, ownerTeacherID, id string) error {
	hw, ok := f.items[id]
	if !ok || hw.OwnerTeacherID != ownerTeacherID {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeHomeworkRepo) DeleteBatch(ctx context.Context, ownerTeacherID string, ids []string) error {
	if f.deleteBatchErr != nil {
		return f.deleteBatchErr
	}
	for _, id := range ids {
		if hw, ok := f.items[id]; ok && hw.OwnerTeacherID == ownerTeacherID {
			delete(f.items, id)
		}
	}
	return nil
}

type fakeTeacherRepo struct {
	items map[string]*models.Teacher

	roleUpdates int
}

func newFakeTeacherRepo() *fakeTeacherRepo {
	return &fakeTeacherRepo{items: make(map[string]*models.Teacher)}
}

func (f *fakeTeacherRepo) put(teacher models.Teacher) *models.Teacher {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	cp := teacher
	f.items[teacher.ID] = &cp
	return &cp
}

func (f *fakeTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	f.put(*teacher)
	return nil
}

func (f *fakeTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := f.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTeacherRepo) FindByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	for _, teacher := range f.items {
		if teacher.Email == email {
			cp := *teacher
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTeacherRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	out := make([]models.Teacher, 0, len(f.items))
	for _, teacher := range f.items {
		out = append(out, *teacher)
	}
	return out, nil
}

func (f *fakeTeacherRepo) UpdateName(ctx context.Context, id, name string) error {
	teacher, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	teacher.Name = name
	return nil
}

func (f *fakeTeacherRepo) UpdateRole(ctx context.Context, id string, role models.TeacherRole) error {
	teacher, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.roleUpdates++
	teacher.Role = role
	return nil
}

type fakeSessionRepo struct {
	items map[string]models.SessionContext

	saveErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{items: make(map[string]models.SessionContext)}
}

func (f *fakeSessionRepo) Save(ctx context.Context, session models.SessionContext) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.items[session.SessionID] = session
	return nil
}

func (f *fakeSessionRepo) Find(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	if session, ok := f.items[sessionID]; ok {
		cp := session
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionRepo) Delete(ctx context.Context, sessionID string) error {
	delete(f.items, sessionID)
	return nil
}
