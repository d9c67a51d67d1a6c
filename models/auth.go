package models

// Authentication methods accepted by POST /auth/login.
const (
	MethodFace         = "face"
	MethodVoice        = "voice"
	MethodPasswordless = "passwordless"
	MethodMFA          = "mfa"
)

// SupportedMethods is enumerated back to the caller on an unrecognized method.
var SupportedMethods = []string{MethodFace, MethodVoice, MethodPasswordless, MethodMFA}

// LoginRequest is the tagged union for the multi-method login endpoint.
// Method selects the variant; each variant reads only its own fields.
type LoginRequest struct {
	Method  string `json:"method"`
	Image   string `json:"image,omitempty"`
	Audio   string `json:"audio,omitempty"`
	Email   string `json:"email,omitempty"`
	Code    string `json:"code,omitempty"`
	UserID  string `json:"userId,omitempty"`
	MFACode string `json:"mfaCode,omitempty"`
}

// AuthResult is the typed outcome of an authentication attempt. Expected
// failures are carried in Error rather than a Go error.
type AuthResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	UserID  string `json:"userId,omitempty"`
	// Code is only populated for passwordless initiation outside production.
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}
