package models

import "time"

// Session types record how a session was established.
const (
	SessionFace         = "FACE"
	SessionVoice        = "VOICE"
	SessionMFA          = "MFA"
	SessionPasswordless = "PASSWORDLESS"
)

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LoginCode is a pending passwordless one-time code, one per email.
type LoginCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}
