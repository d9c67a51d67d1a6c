package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"smartattend_backend/models"
)

// PostgresStore implements Store against a *sql.DB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, face_id, voice_id, mfa_secret, mfa_enabled, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`, user.ID, user.Email, user.Name, user.Role, user.FaceID, user.VoiceID, user.MFASecret, user.MFAEnabled, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

const userColumns = `id, email, name, role, COALESCE(face_id, ''), COALESCE(voice_id, ''), COALESCE(mfa_secret, ''), mfa_enabled, created_at`

func (s *PostgresStore) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role,
		&user.FaceID, &user.VoiceID, &user.MFASecret, &user.MFAEnabled, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PostgresStore) GetUserByFaceID(ctx context.Context, faceID string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE face_id = $1`, faceID))
}

func (s *PostgresStore) UpdateUserFaceID(ctx context.Context, userID, faceID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET face_id = $1 WHERE id = $2`, faceID, userID)
	if err != nil {
		return fmt.Errorf("error updating face id: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateUserMFA(ctx context.Context, userID, secret string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = NULLIF($1, ''), mfa_enabled = $2 WHERE id = $3`,
		secret, enabled, userID)
	if err != nil {
		return fmt.Errorf("error updating mfa settings: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, session.Token, session.UserID, session.Type, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, type, expires_at, created_at
		FROM sessions WHERE token = $1
	`, token).Scan(&session.Token, &session.UserID, &session.Type, &session.ExpiresAt, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying session: %w", err)
	}
	return &session, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *PostgresStore) CreateAttendance(ctx context.Context, att *models.Attendance) error {
	metadata, err := marshalMetadata(att.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attendances (id, user_id, student_id, type, recognized_by, location, notes, metadata, timestamp)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`, att.ID, att.UserID, att.StudentID, att.Type, att.RecognizedBy, att.Location, att.Notes, metadata, att.Timestamp)
	if err != nil {
		return fmt.Errorf("error creating attendance: %w", err)
	}
	return nil
}

const attendanceColumns = `id, user_id, COALESCE(student_id, ''), type, recognized_by,
		COALESCE(location, ''), COALESCE(notes, ''), metadata, timestamp`

func (s *PostgresStore) PresentAttendancesInWindow(ctx context.Context, userID string, from, to time.Time) ([]models.Attendance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE user_id = $1 AND type = $2 AND timestamp >= $3 AND timestamp <= $4
		ORDER BY timestamp DESC
	`, userID, models.AttendancePresent, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying attendance window: %w", err)
	}
	return scanAttendances(rows)
}

func (s *PostgresStore) AttendancesByUser(ctx context.Context, userID string, limit int) ([]models.Attendance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying attendances: %w", err)
	}
	return scanAttendances(rows)
}

func (s *PostgresStore) AttendancesByDateRange(ctx context.Context, start, end time.Time) ([]models.Attendance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendances
		WHERE timestamp >= $1 AND timestamp <= $2
		ORDER BY timestamp DESC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("error querying attendances by range: %w", err)
	}
	return scanAttendances(rows)
}

func (s *PostgresStore) UpsertLoginCode(ctx context.Context, code *models.LoginCode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_codes (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`, code.Email, code.Code, code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("error storing login code: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLoginCode(ctx context.Context, email string) (*models.LoginCode, error) {
	var code models.LoginCode
	err := s.db.QueryRowContext(ctx,
		`SELECT email, code, expires_at FROM login_codes WHERE email = $1`, email,
	).Scan(&code.Email, &code.Code, &code.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying login code: %w", err)
	}
	return &code, nil
}

func (s *PostgresStore) DeleteLoginCode(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM login_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("error deleting login code: %w", err)
	}
	return nil
}

func scanAttendances(rows *sql.Rows) ([]models.Attendance, error) {
	defer rows.Close()

	var attendances []models.Attendance
	for rows.Next() {
		var att models.Attendance
		var metadata []byte
		err := rows.Scan(&att.ID, &att.UserID, &att.StudentID, &att.Type, &att.RecognizedBy,
			&att.Location, &att.Notes, &metadata, &att.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &att.Metadata); err != nil {
				return nil, fmt.Errorf("error decoding attendance metadata: %w", err)
			}
		}
		attendances = append(attendances, att)
	}
	return attendances, rows.Err()
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("error encoding attendance metadata: %w", err)
	}
	return data, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
