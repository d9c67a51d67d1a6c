package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"time"

	"smartattend_backend/models"
	"smartattend_backend/recognition"
	"smartattend_backend/store"
)

// ErrInvalidMethod is returned when the login request names an unknown method
// or is missing the fields its method requires. Handlers map it to a 400 with
// the supported method list.
var ErrInvalidMethod = errors.New("invalid authentication method or missing parameters")

// loginCodeTTL bounds how long a pending passwordless code stays usable.
const loginCodeTTL = 10 * time.Minute

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// Authenticator dispatches login requests across the four supported methods
// and turns a successful attempt into an issued session.
type Authenticator struct {
	store      store.Store
	sessions   *SessionService
	matcher    recognition.Matcher
	production bool
}

func NewAuthenticator(st store.Store, sessions *SessionService, matcher recognition.Matcher, production bool) *Authenticator {
	return &Authenticator{
		store:      st,
		sessions:   sessions,
		matcher:    matcher,
		production: production,
	}
}

// Authenticate validates the request against its method's required fields and
// runs that single strategy. Expected rejections come back in the result;
// the error return is reserved for ErrInvalidMethod and internal failures.
func (a *Authenticator) Authenticate(ctx context.Context, req models.LoginRequest) (models.AuthResult, error) {
	switch {
	case req.Method == models.MethodFace && req.Image != "":
		return a.authenticateFace(ctx, req.Image)
	case req.Method == models.MethodVoice && req.Audio != "":
		return a.authenticateVoice(ctx, req.Audio)
	case req.Method == models.MethodPasswordless && req.Email != "" && req.Code == "":
		return a.initiatePasswordless(ctx, req.Email)
	case req.Method == models.MethodPasswordless && req.Email != "" && req.Code != "":
		return a.verifyPasswordless(ctx, req.Email, req.Code)
	case req.Method == models.MethodMFA && req.UserID != "" && req.MFACode != "":
		return a.verifyMFA(ctx, req.UserID, req.MFACode)
	}
	return models.AuthResult{}, ErrInvalidMethod
}

func (a *Authenticator) authenticateFace(ctx context.Context, image string) (models.AuthResult, error) {
	result, err := a.matcher.Recognize(ctx, image)
	if err != nil {
		// Matcher unreachable surfaces as an authentication failure.
		log.Printf("Face recognition error: %v", err)
		return models.AuthResult{Error: "Face recognition failed"}, nil
	}
	if !result.Success || result.FaceID == "" {
		msg := result.Error
		if msg == "" {
			msg = "Face recognition failed"
		}
		return models.AuthResult{Error: msg}, nil
	}

	user, err := a.store.GetUserByFaceID(ctx, result.FaceID)
	if errors.Is(err, store.ErrNotFound) {
		return models.AuthResult{Error: "User not found"}, nil
	}
	if err != nil {
		return models.AuthResult{}, err
	}

	token, err := a.sessions.Issue(ctx, user.ID, models.SessionFace)
	if err != nil {
		return models.AuthResult{}, err
	}
	return models.AuthResult{Success: true, Token: token, UserID: user.ID}, nil
}

func (a *Authenticator) authenticateVoice(_ context.Context, _ string) (models.AuthResult, error) {
	// Explicit stub until a voice matcher exists; must never succeed.
	return models.AuthResult{Error: "Voice authentication not yet implemented"}, nil
}

// initiatePasswordless stores a fresh one-time code for the email. Unknown
// emails get the same success response with nothing stored, so the endpoint
// cannot be used to probe which accounts exist.
func (a *Authenticator) initiatePasswordless(ctx context.Context, email string) (models.AuthResult, error) {
	_, err := a.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return models.AuthResult{Success: true}, nil
	}
	if err != nil {
		return models.AuthResult{}, err
	}

	code, err := generateLoginCode()
	if err != nil {
		return models.AuthResult{}, err
	}
	err = a.store.UpsertLoginCode(ctx, &models.LoginCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(loginCodeTTL),
	})
	if err != nil {
		return models.AuthResult{}, err
	}

	result := models.AuthResult{Success: true}
	if !a.production {
		// Outside production the code comes back to the caller instead of
		// going out via email.
		result.Code = code
	}
	return result, nil
}

func (a *Authenticator) verifyPasswordless(ctx context.Context, email, code string) (models.AuthResult, error) {
	if !sixDigits.MatchString(code) {
		return models.AuthResult{Error: "Invalid code format"}, nil
	}

	// Uniform "Invalid code" for unknown users, missing codes, expired codes
	// and mismatches alike.
	user, err := a.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return models.AuthResult{Error: "Invalid code"}, nil
	}
	if err != nil {
		return models.AuthResult{}, err
	}

	pending, err := a.store.GetLoginCode(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return models.AuthResult{Error: "Invalid code"}, nil
	}
	if err != nil {
		return models.AuthResult{}, err
	}
	if pending.Code != code || time.Now().After(pending.ExpiresAt) {
		return models.AuthResult{Error: "Invalid code"}, nil
	}

	// Single use: drop the code before issuing the session.
	if err := a.store.DeleteLoginCode(ctx, email); err != nil {
		return models.AuthResult{}, err
	}

	token, err := a.sessions.Issue(ctx, user.ID, models.SessionPasswordless)
	if err != nil {
		return models.AuthResult{}, err
	}
	return models.AuthResult{Success: true, Token: token, UserID: user.ID}, nil
}

func (a *Authenticator) verifyMFA(ctx context.Context, userID, code string) (models.AuthResult, error) {
	user, err := a.store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.AuthResult{Error: "MFA not enabled for this user"}, nil
	}
	if err != nil {
		return models.AuthResult{}, err
	}
	if !user.MFAEnabled || user.MFASecret == "" {
		return models.AuthResult{Error: "MFA not enabled for this user"}, nil
	}

	if !VerifyTOTP(user.MFASecret, code, time.Now()) {
		return models.AuthResult{Error: "Invalid MFA code"}, nil
	}

	token, err := a.sessions.Issue(ctx, user.ID, models.SessionMFA)
	if err != nil {
		return models.AuthResult{}, err
	}
	return models.AuthResult{Success: true, Token: token, UserID: user.ID}, nil
}

// generateLoginCode draws a uniform 6-digit code from [100000, 999999].
func generateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("error generating login code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
