package models

import "time"

// Homework represents an assignment created by a teacher for a class. The
// class is a plain label; students and homework are matched by equality on
// it within the owning teacher's scope.
type Homework struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Name           string    `bson:"name" json:"name"`
	DueDate        string    `bson:"dueDate" json:"due_date"`
	Class          string    `bson:"class" json:"class"`
	OwnerTeacherID string    `bson:"ownerTeacherId" json:"owner_teacher_id"`
	CreatedAt      time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updated_at"`
}
