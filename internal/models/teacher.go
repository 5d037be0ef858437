package models

import "time"

// TeacherRole enumerates the roles a teacher account can hold.
type TeacherRole string

const (
	RoleTeacher TeacherRole = "teacher"
	RoleAdmin   TeacherRole = "admin"
)

// Teacher represents an instructor account. Teachers own every student and
// homework document they create; they are never hard-deleted.
type Teacher struct {
	ID           string      `bson:"_id,omitempty" json:"id"`
	Name         string      `bson:"name" json:"name"`
	Email        string      `bson:"email" json:"email"`
	Role         TeacherRole `bson:"role" json:"role"`
	PasswordHash string      `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time   `bson:"createdAt" json:"created_at"`
	UpdatedAt    time.Time   `bson:"updatedAt" json:"updated_at"`
}

// IsAdmin reports whether the record itself carries the admin role.
func (t *Teacher) IsAdmin() bool {
	return t != nil && t.Role == RoleAdmin
}
