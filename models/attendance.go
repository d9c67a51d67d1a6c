package models

import "time"

// Attendance types.
const (
	AttendancePresent = "PRESENT"
	AttendanceAbsent  = "ABSENT"
	AttendanceLate    = "LATE"
	AttendanceExcused = "EXCUSED"
)

// Recognition sources for attendance provenance.
const (
	RecognizedByFace   = "FACE"
	RecognizedByVoice  = "VOICE"
	RecognizedByManual = "MANUAL"
)

func ValidRecognitionSource(s string) bool {
	switch s {
	case RecognizedByFace, RecognizedByVoice, RecognizedByManual:
		return true
	}
	return false
}

type Attendance struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	StudentID    string         `json:"studentId,omitempty"`
	Type         string         `json:"type"`
	RecognizedBy string         `json:"recognizedBy"`
	Location     string         `json:"location,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// Course returns the course discriminator carried in metadata, if any.
func (a *Attendance) Course() string {
	if a.Metadata == nil {
		return ""
	}
	if c, ok := a.Metadata["course"].(string); ok {
		return c
	}
	return ""
}

type CreateAttendanceRequest struct {
	StudentID          string         `json:"studentId"`
	Type               string         `json:"type"`
	RecognizedBy       string         `json:"recognizedBy" binding:"required"`
	Location           string         `json:"location"`
	Notes              string         `json:"notes"`
	Metadata           map[string]any `json:"metadata"`
	Course             string         `json:"course"`
	SkipDuplicateCheck bool           `json:"skipDuplicateCheck"`
}

// ExistingAttendanceRef is the conflict payload returned on a duplicate hit.
type ExistingAttendanceRef struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Location  string    `json:"location,omitempty"`
}
