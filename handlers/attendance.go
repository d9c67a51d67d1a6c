package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"smartattend_backend/attendance"
	"smartattend_backend/middleware"
	"smartattend_backend/models"

	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	service *attendance.Service
}

func NewAttendanceHandler(service *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func (h *AttendanceHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	var req models.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid recognition type is required (FACE, VOICE, or MANUAL)"})
		return
	}

	result, err := h.service.Record(c.Request.Context(), userID, req)
	if errors.Is(err, attendance.ErrInvalidRecognitionType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid recognition type is required (FACE, VOICE, or MANUAL)"})
		return
	}
	if err != nil {
		log.Printf("Error recording attendance: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if result.Duplicate != nil {
		c.JSON(http.StatusConflict, gin.H{
			"success":     false,
			"error":       "Duplicate attendance",
			"message":     "Attendance already recorded within the current window",
			"isDuplicate": true,
			"existingAttendance": models.ExistingAttendanceRef{
				ID:        result.Duplicate.ID,
				Timestamp: result.Duplicate.Timestamp,
				Location:  result.Duplicate.Location,
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"attendance": result.Attendance,
	})
}

func (h *AttendanceHandler) List(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = c.GetString(middleware.ContextUserID)
	}

	limit := attendance.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var start, end *time.Time
	if rawStart, rawEnd := c.Query("startDate"), c.Query("endDate"); rawStart != "" && rawEnd != "" {
		s, errS := parseDate(rawStart)
		e, errE := parseDate(rawEnd)
		if errS != nil || errE != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range"})
			return
		}
		start, end = &s, &e
	}

	attendances, err := h.service.List(c.Request.Context(), userID, start, end, limit)
	if err != nil {
		log.Printf("Error listing attendances: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if attendances == nil {
		attendances = []models.Attendance{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(attendances),
		"attendances": attendances,
	})
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
