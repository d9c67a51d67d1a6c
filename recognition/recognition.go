// Package recognition talks to the external face-matching service. The
// service maps a face image to a stable person identifier plus a confidence
// score; user accounts reference that identifier through their faceId.
package recognition

import "context"

// Result is the outcome of a recognition attempt. Confidence is in [0,1].
// A miss is Success=false with Error set, not a Go error.
type Result struct {
	Success    bool    `json:"success"`
	FaceID     string  `json:"faceId,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Matcher is the face-matching oracle. Recognize maps an image to an enrolled
// person; Register enrolls a new person and returns the assigned face ID.
type Matcher interface {
	Recognize(ctx context.Context, image string) (Result, error)
	Register(ctx context.Context, userID, name, image string) (string, error)
}
