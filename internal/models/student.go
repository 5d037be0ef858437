package models

import "time"

// Student represents a learner enrolled in one of a teacher's classes.
// Assigned and Completed are id sets stored as arrays; every mutation goes
// through set-union/set-remove updates so concurrent writers compose.
// Invariant: Completed is a subset of Assigned.
type Student struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Name           string    `bson:"name" json:"name"`
	Class          string    `bson:"class" json:"class"`
	OwnerTeacherID string    `bson:"ownerTeacherId" json:"owner_teacher_id"`
	Assigned       []string  `bson:"assigned" json:"assigned"`
	Completed      []string  `bson:"completed" json:"completed"`
	CreatedAt      time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updated_at"`
}

// HasAssigned reports whether the homework id is in the student's assigned set.
func (s *Student) HasAssigned(homeworkID string) bool {
	return containsID(s.Assigned, homeworkID)
}

// HasCompleted reports whether the homework id is in the student's completed set.
func (s *Student) HasCompleted(homeworkID string) bool {
	return containsID(s.Completed, homeworkID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
