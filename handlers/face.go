package handlers

import (
	"errors"
	"log"
	"net/http"

	"smartattend_backend/recognition"
	"smartattend_backend/store"

	"github.com/gin-gonic/gin"
)

// FaceHandler serves the face enrollment and recognition endpoints. Both are
// public: enrollment is the step between registering an account and being
// able to log in with it.
type FaceHandler struct {
	store   store.Store
	matcher recognition.Matcher
}

func NewFaceHandler(st store.Store, matcher recognition.Matcher) *FaceHandler {
	return &FaceHandler{store: st, matcher: matcher}
}

// Enroll registers the image with the matcher and attaches the returned face
// ID to the user.
func (h *FaceHandler) Enroll(c *gin.Context) {
	var req struct {
		Image  string `json:"image" binding:"required"`
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image data and userId are required"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Error loading user %s: %v", req.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	faceID, err := h.matcher.Register(c.Request.Context(), user.ID, user.Name, req.Image)
	if err != nil {
		log.Printf("Face registration error for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Face registration failed"})
		return
	}

	if err := h.store.UpdateUserFaceID(c.Request.Context(), user.ID, faceID); err != nil {
		log.Printf("Error saving face id for user %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save face registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"faceId":  faceID,
		"message": "Face registered successfully",
	})
}

// Recognize identifies the face in the image and returns the matching user,
// without issuing a session.
func (h *FaceHandler) Recognize(c *gin.Context) {
	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image data is required"})
		return
	}

	result, err := h.matcher.Recognize(c.Request.Context(), req.Image)
	if err != nil {
		log.Printf("Face recognition error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Face recognition failed",
		})
		return
	}
	if !result.Success || result.FaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":    false,
			"error":      "Face not recognized",
			"confidence": result.Confidence,
		})
		return
	}

	user, err := h.store.GetUserByFaceID(c.Request.Context(), result.FaceID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"success":    false,
			"error":      "Face not recognized",
			"confidence": result.Confidence,
		})
		return
	}
	if err != nil {
		log.Printf("Error looking up face id: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"userId":     user.ID,
		"user":       user.Info(),
		"confidence": result.Confidence,
		"faceId":     result.FaceID,
	})
}
