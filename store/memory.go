package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"smartattend_backend/models"
)

// MemoryStore is an in-memory Store used in tests and for local development
// without a database. All methods are safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]*models.User       // by id
	sessions    map[string]*models.Session    // by token
	attendances map[string]*models.Attendance // by id
	loginCodes  map[string]*models.LoginCode  // by email
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*models.User),
		sessions:    make(map[string]*models.Session),
		attendances: make(map[string]*models.Attendance),
		loginCodes:  make(map[string]*models.LoginCode),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByFaceID(_ context.Context, faceID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.FaceID != "" && u.FaceID == faceID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUserFaceID(_ context.Context, userID, faceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.FaceID = faceID
	return nil
}

func (s *MemoryStore) UpdateUserMFA(_ context.Context, userID, secret string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.MFASecret = secret
	u.MFAEnabled = enabled
	return nil
}

func (s *MemoryStore) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[copied.Token] = &copied
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[token]; ok {
		copied := *sess
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) DeleteExpiredSessions(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if sess.ExpiresAt.Before(before) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateAttendance(_ context.Context, att *models.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *att
	s.attendances[copied.ID] = &copied
	return nil
}

func (s *MemoryStore) PresentAttendancesInWindow(_ context.Context, userID string, from, to time.Time) ([]models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.Attendance
	for _, att := range s.attendances {
		if att.UserID != userID || att.Type != models.AttendancePresent {
			continue
		}
		if att.Timestamp.Before(from) || att.Timestamp.After(to) {
			continue
		}
		result = append(result, *att)
	}
	sortByTimestampDesc(result)
	return result, nil
}

func (s *MemoryStore) AttendancesByUser(_ context.Context, userID string, limit int) ([]models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.Attendance
	for _, att := range s.attendances {
		if att.UserID == userID {
			result = append(result, *att)
		}
	}
	sortByTimestampDesc(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStore) AttendancesByDateRange(_ context.Context, start, end time.Time) ([]models.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.Attendance
	for _, att := range s.attendances {
		if att.Timestamp.Before(start) || att.Timestamp.After(end) {
			continue
		}
		result = append(result, *att)
	}
	sortByTimestampDesc(result)
	return result, nil
}

func (s *MemoryStore) UpsertLoginCode(_ context.Context, code *models.LoginCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *code
	s.loginCodes[copied.Email] = &copied
	return nil
}

func (s *MemoryStore) GetLoginCode(_ context.Context, email string) (*models.LoginCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if code, ok := s.loginCodes[email]; ok {
		copied := *code
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) DeleteLoginCode(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.loginCodes, email)
	return nil
}

func sortByTimestampDesc(attendances []models.Attendance) {
	sort.Slice(attendances, func(i, j int) bool {
		return attendances[i].Timestamp.After(attendances[j].Timestamp)
	})
}
