package attendance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"attendance-backend/internal/notify"
	"attendance-backend/internal/store"
	"attendance-backend/internal/telemetry"
)

// sessionTTL is how long a session accepts submissions after creation
const sessionTTL = 30 * time.Minute

// statusPresent is the only status this core ever writes
const statusPresent = "present"

// IssuedSession is the result of creating a new session
type IssuedSession struct {
	SessionID string `json:"sessionId"`
	QRURL     string `json:"qrUrl"`
	ExpiresAt int64  `json:"expiresAt"`
	ClassID   string `json:"classId"`
}

// Confirmation is the result of a successful attendance submission
type Confirmation struct {
	StudentID string `json:"studentId"`
	ClassID   string `json:"classId"`
	Timestamp int64  `json:"timestamp"`
}

// ReportEntry is one student's arrival in a report
type ReportEntry struct {
	StudentID string `json:"studentId"`
	Timestamp int64  `json:"timestamp"`
}

// Report aggregates a session's attendance, earliest arrival first
type Report struct {
	SessionID      string        `json:"sessionId"`
	ClassID        string        `json:"classId"`
	Date           string        `json:"date"`
	SessionCreated int64         `json:"sessionCreated"`
	ExpiresAt      int64         `json:"expiresAt"`
	Active         bool          `json:"active"`
	TotalPresent   int           `json:"totalPresent"`
	Attendance     []ReportEntry `json:"attendance"`
}

// Service implements session issuance, attendance recording, and report
// assembly over an injected store. Metrics and notifications are
// best-effort; their failures never reach the caller.
type Service struct {
	store    store.Store
	metrics  telemetry.Publisher
	notifier notify.Notifier
	baseURL  string
}

// NewService creates a new attendance service
func NewService(st store.Store, metrics telemetry.Publisher, notifier notify.Notifier, baseURL string) *Service {
	return &Service{
		store:    st,
		metrics:  metrics,
		notifier: notifier,
		baseURL:  baseURL,
	}
}

// GenerateSession creates a new session for a class with a fresh id and
// single-use token, valid for 30 minutes
func (s *Service) GenerateSession(ctx context.Context, classID string) (*IssuedSession, error) {
	now := time.Now()

	session := &store.Session{
		SessionID: uuid.NewString(),
		ClassID:   classID,
		Date:      now.Format("2006-01-02"),
		CreatedAt: now.Unix(),
		QRToken:   strings.ReplaceAll(uuid.NewString(), "-", ""),
		Active:    true,
		ExpiresAt: now.Add(sessionTTL).Unix(),
	}

	if err := s.store.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("put session: %w", err)
	}

	s.metrics.QRCodeGenerated(ctx, classID)

	log.Info().
		Str("session_id", session.SessionID).
		Str("class_id", classID).
		Int64("expires_at", session.ExpiresAt).
		Msg("session generated")

	return &IssuedSession{
		SessionID: session.SessionID,
		QRURL:     fmt.Sprintf("%s/attendance.html?session=%s&token=%s", s.baseURL, session.SessionID, session.QRToken),
		ExpiresAt: session.ExpiresAt,
		ClassID:   classID,
	}, nil
}

// MarkAttendance validates a submission and records one attendance
// event. Each check is terminal; nothing is written before the final
// conditional insert, and the insert itself rejects duplicates.
func (s *Service) MarkAttendance(ctx context.Context, sessionID, qrToken, studentID string) (*Confirmation, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, newError(CodeSessionNotFound, "Session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.QRToken != qrToken {
		return nil, newError(CodeInvalidToken, "Invalid QR code token")
	}

	now := time.Now().Unix()
	if now > session.ExpiresAt || !session.Active {
		return nil, newError(CodeSessionExpired, "Session has expired")
	}

	student, err := s.store.GetStudent(ctx, studentID)
	if errors.Is(err, store.ErrStudentNotFound) {
		return nil, newError(CodeStudentNotFound, "Student not found in database")
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}

	if !slices.Contains(student.EnrolledClasses, session.ClassID) {
		return nil, newError(CodeNotEnrolled, "Student not enrolled in class %s", session.ClassID)
	}

	att := &store.Attendance{
		AttendanceID: uuid.NewString(),
		SessionID:    sessionID,
		StudentID:    studentID,
		ClassID:      session.ClassID,
		Timestamp:    now,
		Status:       statusPresent,
	}

	if err := s.store.PutAttendance(ctx, att); err != nil {
		if errors.Is(err, store.ErrAlreadyMarked) {
			return nil, newError(CodeAlreadyMarked, "Attendance already marked for this session")
		}
		return nil, fmt.Errorf("put attendance: %w", err)
	}

	s.metrics.AttendanceMarked(ctx, session.ClassID, sessionID)
	s.notifier.AttendanceMarked(ctx, studentID, session.ClassID, session.Date)

	log.Info().
		Str("session_id", sessionID).
		Str("student_id", studentID).
		Str("class_id", session.ClassID).
		Msg("attendance marked")

	return &Confirmation{
		StudentID: studentID,
		ClassID:   session.ClassID,
		Timestamp: now,
	}, nil
}

// GetReport returns session metadata and all attendance events for the
// session, sorted ascending by timestamp. Expired sessions stay readable.
func (s *Service) GetReport(ctx context.Context, sessionID string) (*Report, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, newError(CodeSessionNotFound, "Session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	records, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	entries := make([]ReportEntry, 0, len(records))
	for _, att := range records {
		entries = append(entries, ReportEntry{
			StudentID: att.StudentID,
			Timestamp: att.Timestamp,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})

	return &Report{
		SessionID:      sessionID,
		ClassID:        session.ClassID,
		Date:           session.Date,
		SessionCreated: session.CreatedAt,
		ExpiresAt:      session.ExpiresAt,
		Active:         session.Active,
		TotalPresent:   len(entries),
		Attendance:     entries,
	}, nil
}
