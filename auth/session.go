package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"smartattend_backend/models"
	"smartattend_backend/store"
)

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 24 * time.Hour

// SessionCheck is the outcome of verifying a bearer token. When Valid is
// false, Reason carries the caller-facing explanation.
type SessionCheck struct {
	Valid  bool
	UserID string
	Type   string
	Reason string
}

// SessionService issues, verifies and revokes opaque bearer session tokens.
type SessionService struct {
	store store.Store
}

func NewSessionService(st store.Store) *SessionService {
	return &SessionService{store: st}
}

// Issue creates a session for userID and returns its token: 32 random bytes
// hex-encoded, expiring SessionTTL from now.
func (s *SessionService) Issue(ctx context.Context, userID, sessionType string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	now := time.Now()
	session := &models.Session{
		Token:     token,
		UserID:    userID,
		Type:      sessionType,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

// Verify looks the token up in the store. An expired session is deleted on
// discovery and reported as invalid. The returned error is only non-nil for
// store failures, never for a rejected token.
func (s *SessionService) Verify(ctx context.Context, token string) (SessionCheck, error) {
	session, err := s.store.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return SessionCheck{Reason: "invalid session"}, nil
	}
	if err != nil {
		return SessionCheck{}, err
	}

	if session.Expired(time.Now()) {
		// Lazy cleanup; the sweeper handles the rest.
		if err := s.store.DeleteSession(ctx, token); err != nil {
			return SessionCheck{}, err
		}
		return SessionCheck{Reason: "session expired"}, nil
	}

	return SessionCheck{Valid: true, UserID: session.UserID, Type: session.Type}, nil
}

// Revoke deletes the session. Revoking an unknown token is not an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// SweepExpired bulk-deletes sessions past their expiry and returns how many
// were removed. Safe to run concurrently with Issue and Verify.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, time.Now())
}
