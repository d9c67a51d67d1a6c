package routes

import (
	"database/sql"

	"smartattend_backend/attendance"
	"smartattend_backend/auth"
	"smartattend_backend/handlers"
	"smartattend_backend/middleware"
	"smartattend_backend/recognition"
	"smartattend_backend/store"
	"smartattend_backend/webhook"

	"github.com/gin-gonic/gin"
)

// Options carries the wired dependencies for route setup. Database may be nil
// in tests running against the in-memory store.
type Options struct {
	Store           store.Store
	Sessions        *auth.SessionService
	Matcher         recognition.Matcher
	Notifier        *webhook.Notifier
	Database        *sql.DB
	RecognitionMode string
	Production      bool
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, opts Options) {
	authenticator := auth.NewAuthenticator(opts.Store, opts.Sessions, opts.Matcher, opts.Production)
	attendanceService := attendance.NewService(opts.Store, opts.Notifier)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(opts.Store, opts.Sessions, authenticator)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	faceHandler := handlers.NewFaceHandler(opts.Store, opts.Matcher)
	mfaHandler := handlers.NewMFAHandler(opts.Store)
	healthHandler := handlers.NewHealthHandler(opts.Database, opts.RecognitionMode)

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/login", authHandler.AuthStatus)
	r.POST("/face/enroll", faceHandler.Enroll)
	r.POST("/face/recognize", faceHandler.Recognize)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.RequireSession(opts.Sessions))
	{
		// Attendance routes
		protected.POST("/attendance", attendanceHandler.Create)
		protected.GET("/attendance", attendanceHandler.List)

		// MFA enrollment
		protected.POST("/mfa/enable", mfaHandler.Enable)

		// Logout route
		protected.POST("/auth/logout", authHandler.Logout)
	}
}
