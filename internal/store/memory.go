package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for development
// and testing
type MemoryStore struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	students   map[string]*Student
	attendance map[string][]*Attendance // indexed by session id, insertion order
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string]*Session),
		students:   make(map[string]*Student),
		attendance: make(map[string][]*Attendance),
	}
}

// PutSession stores a new session
func (s *MemoryStore) PutSession(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.SessionID] = &cp
	return nil
}

// GetSession retrieves a session by id
func (s *MemoryStore) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	// Return a copy to avoid external modifications
	cp := *session
	return &cp, nil
}

// GetStudent retrieves a student by id
func (s *MemoryStore) GetStudent(ctx context.Context, studentID string) (*Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, exists := s.students[studentID]
	if !exists {
		return nil, ErrStudentNotFound
	}

	cp := *student
	cp.EnrolledClasses = append([]string(nil), student.EnrolledClasses...)
	return &cp, nil
}

// PutStudent stores a roster entry
func (s *MemoryStore) PutStudent(ctx context.Context, student *Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *student
	cp.EnrolledClasses = append([]string(nil), student.EnrolledClasses...)
	s.students[student.StudentID] = &cp
	return nil
}

// PutAttendance stores a new attendance record, rejecting a second
// record for the same (sessionId, studentId) pair
func (s *MemoryStore) PutAttendance(ctx context.Context, att *Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.attendance[att.SessionID] {
		if existing.StudentID == att.StudentID {
			return ErrAlreadyMarked
		}
	}

	cp := *att
	s.attendance[att.SessionID] = append(s.attendance[att.SessionID], &cp)
	return nil
}

// ListBySession retrieves all attendance records for a session in
// insertion order
func (s *MemoryStore) ListBySession(ctx context.Context, sessionID string) ([]*Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.attendance[sessionID]
	result := make([]*Attendance, len(records))
	for i, att := range records {
		cp := *att
		result[i] = &cp
	}

	return result, nil
}
