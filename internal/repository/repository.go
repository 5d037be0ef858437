package repository

import "errors"

// Collection names in the document store.
const (
	TeachersCollection = "teachers"
	StudentsCollection = "students"
	HomeworkCollection = "homework"
)

// ErrNotFound is returned when a lookup matches no document. Services map it
// onto the NOT_FOUND domain error.
var ErrNotFound = errors.New("document not found")
