package app

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountly/internal/controllers"
	"accountly/internal/middleware"
	"accountly/internal/service"
	"accountly/internal/session"
	"accountly/internal/views"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	AuthService service.AuthService
	Sessions    *session.Manager
	BaseURL     string
	Logger      *slog.Logger
}

// NewRouter wires middleware, pages and routes into a gin engine.
func NewRouter(deps Deps) (*gin.Engine, error) {
	tmpl, err := views.Load()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		gin.Recovery(),
		middleware.ErrorPages(),
		deps.Sessions.Middleware(),
	)
	router.NoRoute(middleware.NotFound)

	authController := controllers.NewAuthController(deps.AuthService, deps.Sessions, deps.BaseURL)
	profileController := controllers.NewProfileController(deps.AuthService, deps.Sessions)
	protect := deps.Sessions.Protect

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Public pages
	router.GET("/", authController.Home)
	router.GET("/register", authController.ShowRegister)
	router.POST("/register", authController.Register)
	router.GET("/login", authController.ShowLogin)
	router.POST("/login", authController.Login)
	router.GET("/forgot-password", authController.ShowForgotPassword)
	router.POST("/forgot-password", authController.ForgotPassword)
	router.GET("/reset-password/:token", authController.ShowResetPassword)
	router.POST("/reset-password/:token", authController.ResetPassword)

	// Pages that need a session
	router.GET("/logout", protect(authController.Logout))
	router.GET("/dashboard", protect(profileController.Dashboard))
	router.GET("/edit-profile", protect(profileController.ShowEditProfile))
	router.POST("/edit-profile", protect(profileController.EditProfile))
	router.GET("/cancel-account", protect(profileController.ShowCancelAccount))
	router.POST("/cancel-account", protect(profileController.CancelAccount))
	router.GET("/verify-phone", protect(profileController.ShowVerifyPhone))
	router.POST("/verify-phone", protect(profileController.VerifyPhone))
	router.POST("/verify-phone/resend", protect(profileController.ResendCode))

	return router, nil
}
