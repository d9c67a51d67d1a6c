package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"smartattend_backend/auth"
	"smartattend_backend/middleware"
	"smartattend_backend/models"
	"smartattend_backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	store         store.Store
	sessions      *auth.SessionService
	authenticator *auth.Authenticator
}

func NewAuthHandler(st store.Store, sessions *auth.SessionService, authenticator *auth.Authenticator) *AuthHandler {
	return &AuthHandler{
		store:         st,
		sessions:      sessions,
		authenticator: authenticator,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	_, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Error checking email existence: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check email"})
		return
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Name:      req.Name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		log.Printf("Error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"userId":  user.ID,
		"user":    user.Info(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authenticator.Authenticate(c.Request.Context(), req)
	if errors.Is(err, auth.ErrInvalidMethod) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            err.Error(),
			"supportedMethods": models.SupportedMethods,
		})
		return
	}
	if err != nil {
		log.Printf("Login error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !result.Success {
		c.JSON(http.StatusUnauthorized, gin.H{"error": result.Error})
		return
	}

	// Passwordless initiation succeeds without a token; the code travels
	// out of band (or in the response outside production).
	if result.Token == "" {
		resp := gin.H{"success": true, "message": "Authentication code sent"}
		if result.Code != "" {
			resp["code"] = result.Code
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   result.Token,
		"userId":  result.UserID,
		"method":  req.Method,
	})
}

// AuthStatus reports whether the presented token (if any) is a live session.
func (h *AuthHandler) AuthStatus(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"message":       "No token provided",
		})
		return
	}

	check, err := h.sessions.Verify(c.Request.Context(), token)
	if err != nil {
		log.Printf("Session verification error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !check.Valid {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"error":         check.Reason,
		})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), check.UserID)
	if err != nil {
		log.Printf("Error loading user %s: %v", check.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          user.Info(),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextSessionToken)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No token provided"})
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
		log.Printf("Error revoking session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
