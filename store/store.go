package store

import (
	"context"
	"errors"
	"time"

	"smartattend_backend/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the durable persistence layer for users, sessions, attendance
// records and pending passwordless codes. Both the Postgres implementation
// and the in-memory implementation used in tests satisfy it.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFaceID(ctx context.Context, faceID string) (*models.User, error)
	UpdateUserFaceID(ctx context.Context, userID, faceID string) error
	UpdateUserMFA(ctx context.Context, userID, secret string, enabled bool) error

	// Sessions, keyed by token so verification is a single key lookup
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	// Attendance
	CreateAttendance(ctx context.Context, att *models.Attendance) error
	PresentAttendancesInWindow(ctx context.Context, userID string, from, to time.Time) ([]models.Attendance, error)
	AttendancesByUser(ctx context.Context, userID string, limit int) ([]models.Attendance, error)
	AttendancesByDateRange(ctx context.Context, start, end time.Time) ([]models.Attendance, error)

	// Pending passwordless codes, one per email
	UpsertLoginCode(ctx context.Context, code *models.LoginCode) error
	GetLoginCode(ctx context.Context, email string) (*models.LoginCode, error)
	DeleteLoginCode(ctx context.Context, email string) error
}
