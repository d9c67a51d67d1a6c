// Package attendance records presence events, guarding against duplicate
// entries inside a sliding time window.
package attendance

import (
	"context"
	"errors"
	"time"

	"smartattend_backend/models"
	"smartattend_backend/store"
	"smartattend_backend/webhook"

	"github.com/google/uuid"
)

// DefaultWindowMinutes is the duplicate-detection window.
const DefaultWindowMinutes = 60

// DefaultListLimit caps attendance listings when the caller gives no limit.
const DefaultListLimit = 50

// ErrInvalidRecognitionType rejects a recognizedBy outside FACE/VOICE/MANUAL.
var ErrInvalidRecognitionType = errors.New("valid recognition type required")

// DuplicateCheck is the guard's verdict. The check is advisory: it holds no
// lock, so two concurrent records can both pass it. Dedup here is best
// effort, not strict exclusion.
type DuplicateCheck struct {
	IsDuplicate bool
	Existing    *models.Attendance
}

// RecordResult is the recorder's outcome: either Attendance was inserted, or
// Duplicate carries the record that suppressed the insert.
type RecordResult struct {
	Attendance *models.Attendance
	Duplicate  *models.Attendance
}

type Service struct {
	store    store.Store
	notifier *webhook.Notifier
}

func NewService(st store.Store, notifier *webhook.Notifier) *Service {
	return &Service{store: st, notifier: notifier}
}

// CheckDuplicate scans the user's PRESENT records in [now-window, now],
// most recent first. With a course, the newest record for that course is the
// candidate; without one, the newest record overall.
func (s *Service) CheckDuplicate(ctx context.Context, userID, course string, windowMinutes int) (DuplicateCheck, error) {
	if windowMinutes <= 0 {
		windowMinutes = DefaultWindowMinutes
	}
	now := time.Now()
	from := now.Add(-time.Duration(windowMinutes) * time.Minute)

	recent, err := s.store.PresentAttendancesInWindow(ctx, userID, from, now)
	if err != nil {
		return DuplicateCheck{}, err
	}

	if course != "" {
		for i := range recent {
			if recent[i].Course() == course {
				return DuplicateCheck{IsDuplicate: true, Existing: &recent[i]}, nil
			}
		}
		return DuplicateCheck{}, nil
	}

	if len(recent) > 0 {
		return DuplicateCheck{IsDuplicate: true, Existing: &recent[0]}, nil
	}
	return DuplicateCheck{}, nil
}

// Record validates and persists a presence event for userID. PRESENT records
// go through the duplicate guard unless the caller skips it; a guard hit
// suppresses the insert and returns the existing record instead.
func (s *Service) Record(ctx context.Context, userID string, req models.CreateAttendanceRequest) (RecordResult, error) {
	if !models.ValidRecognitionSource(req.RecognizedBy) {
		return RecordResult{}, ErrInvalidRecognitionType
	}

	attType := req.Type
	if attType == "" {
		attType = models.AttendancePresent
	}

	if !req.SkipDuplicateCheck && attType == models.AttendancePresent {
		course := req.Course
		if course == "" && req.Metadata != nil {
			if c, ok := req.Metadata["course"].(string); ok {
				course = c
			}
		}
		check, err := s.CheckDuplicate(ctx, userID, course, DefaultWindowMinutes)
		if err != nil {
			return RecordResult{}, err
		}
		if check.IsDuplicate {
			return RecordResult{Duplicate: check.Existing}, nil
		}
	}

	att := &models.Attendance{
		ID:           uuid.NewString(),
		UserID:       userID,
		StudentID:    req.StudentID,
		Type:         attType,
		RecognizedBy: req.RecognizedBy,
		Location:     req.Location,
		Notes:        req.Notes,
		Metadata:     mergeMetadata(req.Metadata, req.Course),
		Timestamp:    time.Now().UTC(),
	}
	if err := s.store.CreateAttendance(ctx, att); err != nil {
		return RecordResult{}, err
	}

	// Failure to deliver never fails the write.
	s.notifier.Notify("attendance.created", map[string]any{
		"attendanceId": att.ID,
		"userId":       att.UserID,
		"studentId":    att.StudentID,
		"type":         att.Type,
		"timestamp":    att.Timestamp,
	})

	return RecordResult{Attendance: att}, nil
}

// List returns attendance records: by date range when both bounds are given,
// otherwise by user, newest first.
func (s *Service) List(ctx context.Context, userID string, start, end *time.Time, limit int) ([]models.Attendance, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if start != nil && end != nil {
		return s.store.AttendancesByDateRange(ctx, *start, *end)
	}
	return s.store.AttendancesByUser(ctx, userID, limit)
}

func mergeMetadata(metadata map[string]any, course string) map[string]any {
	if metadata == nil && course == "" {
		return nil
	}
	merged := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		merged[k] = v
	}
	if course != "" {
		merged["course"] = course
	}
	return merged
}
