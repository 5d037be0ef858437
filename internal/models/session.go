package models

// SessionContext is the server-side session state passed explicitly into
// service operations. ActiveTeacherID is the identity all queries are scoped
// to; PriorAdminID is the one-deep impersonation slot an admin is parked in
// while acting as another teacher.
type SessionContext struct {
	SessionID       string  `json:"session_id"`
	ActiveTeacherID string  `json:"active_teacher_id"`
	PriorAdminID    *string `json:"prior_admin_id,omitempty"`
}

// Impersonating reports whether an admin is currently acting as another
// teacher through this session.
func (s SessionContext) Impersonating() bool {
	return s.PriorAdminID != nil && *s.PriorAdminID != ""
}

// Access is the capability projection derived from a profile plus session.
// Admin affordances follow the session, not the record: a teacher being
// impersonated by an admin is admin-capable for the session's duration.
type Access struct {
	IsAdminCapable bool `json:"is_admin_capable"`
	Impersonating  bool `json:"impersonating"`
}
