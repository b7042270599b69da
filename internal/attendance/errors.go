package attendance

import "fmt"

// Code identifies one of the closed set of recording outcomes. Callers
// match on the code; Detail carries the human-readable message.
type Code int

const (
	CodeSessionNotFound Code = iota + 1
	CodeInvalidToken
	CodeSessionExpired
	CodeStudentNotFound
	CodeNotEnrolled
	CodeAlreadyMarked
)

// Error is a tagged recording outcome
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}
