package store

import (
	"context"
	"errors"
)

// Sentinel errors for common error conditions
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrAlreadyMarked   = errors.New("attendance already marked")
)

// Session is a time-boxed attendance window for one class meeting.
// Sessions are written once and never mutated; expiry is evaluated at
// read time, nothing flips Active back to false.
type Session struct {
	SessionID string `dynamodbav:"sessionId"`
	ClassID   string `dynamodbav:"classId"`
	Date      string `dynamodbav:"date"`
	CreatedAt int64  `dynamodbav:"timestamp"`
	QRToken   string `dynamodbav:"qrToken"`
	Active    bool   `dynamodbav:"active"`
	ExpiresAt int64  `dynamodbav:"expiresAt"`
}

// Student is owned by the roster process; this core only reads it.
type Student struct {
	StudentID       string   `dynamodbav:"studentId"`
	EnrolledClasses []string `dynamodbav:"enrolledClasses,stringset"`
}

// Attendance records that one student was present in one session.
type Attendance struct {
	AttendanceID string `dynamodbav:"attendanceId"`
	SessionID    string `dynamodbav:"sessionId"`
	StudentID    string `dynamodbav:"studentId"`
	ClassID      string `dynamodbav:"classId"`
	Timestamp    int64  `dynamodbav:"timestamp"`
	Status       string `dynamodbav:"status"`
}

// SessionStore manages attendance sessions
type SessionStore interface {
	// PutSession stores a new session
	PutSession(ctx context.Context, session *Session) error

	// GetSession retrieves a session by id, ErrSessionNotFound if absent
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}

// StudentStore reads the student roster. PutStudent exists for the
// roster seeder; the request handlers never write students.
type StudentStore interface {
	GetStudent(ctx context.Context, studentID string) (*Student, error)
	PutStudent(ctx context.Context, student *Student) error
}

// AttendanceStore manages attendance records
type AttendanceStore interface {
	// PutAttendance stores a new attendance record. The store enforces
	// at most one record per (sessionId, studentId) pair and returns
	// ErrAlreadyMarked when the pair already has one.
	PutAttendance(ctx context.Context, att *Attendance) error

	// ListBySession retrieves all attendance records for a session
	ListBySession(ctx context.Context, sessionID string) ([]*Attendance, error)
}

// Store combines the three table interfaces
type Store interface {
	SessionStore
	StudentStore
	AttendanceStore
}
