package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	db              *sql.DB
	recognitionMode string
}

func NewHealthHandler(db *sql.DB, recognitionMode string) *HealthHandler {
	return &HealthHandler{db: db, recognitionMode: recognitionMode}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	// Check database connection
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"error":  "Database connection failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"recognition": h.recognitionMode,
	})
}
