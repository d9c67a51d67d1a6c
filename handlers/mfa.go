package handlers

import (
	"errors"
	"log"
	"net/http"

	"smartattend_backend/middleware"
	"smartattend_backend/store"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp/totp"
)

const mfaIssuer = "SmartAttend"

type MFAHandler struct {
	store store.Store
}

func NewMFAHandler(st store.Store) *MFAHandler {
	return &MFAHandler{store: st}
}

// Enable generates a TOTP secret for the authenticated user and returns it
// together with the otpauth provisioning URL for authenticator apps.
func (h *MFAHandler) Enable(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Error loading user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		log.Printf("Error generating MFA secret for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable MFA"})
		return
	}

	if err := h.store.UpdateUserMFA(c.Request.Context(), userID, key.Secret(), true); err != nil {
		log.Printf("Error enabling MFA for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable MFA"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"secret":    key.Secret(),
		"qrCodeUrl": key.URL(),
	})
}
