package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountly/internal/entities"
	"accountly/internal/jwt"
	"accountly/internal/models"
	"accountly/internal/repository"
	"accountly/internal/service"
	"accountly/internal/session"
)

// AuthController serves the public pages: home, registration, login and password recovery.
type AuthController struct {
	authService service.AuthService
	sessions    *session.Manager
	baseURL     string
}

func NewAuthController(authService service.AuthService, sessions *session.Manager, baseURL string) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		baseURL:     baseURL,
	}
}

// Home handles GET /
func (ac *AuthController) Home(c *gin.Context) {
	page(c, ac.sessions, http.StatusOK, "index.html", gin.H{"Title": "Home"})
}

// ShowRegister handles GET /register
func (ac *AuthController) ShowRegister(c *gin.Context) {
	page(c, ac.sessions, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": &models.RegisterForm{}})
}

// Register handles POST /register
func (ac *AuthController) Register(c *gin.Context) {
	var form models.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		session.Flash(c, session.CategoryDanger, "Please fill in every field with a valid value.")
		form.Password = ""
		page(c, ac.sessions, http.StatusBadRequest, "register.html", gin.H{"Title": "Register", "Form": &form})
		return
	}

	_, err := ac.authService.Register(c.Request.Context(), &form)
	switch {
	case err == nil:
		redirect(c, session.CategorySuccess,
			"Registered successfully. Please check your phone for the verification code.", "/login")
	case errors.Is(err, service.ErrUsernameTaken):
		redirect(c, session.CategoryDanger, "Username already exists.", "/register")
	case errors.Is(err, service.ErrEmailTaken):
		redirect(c, session.CategoryDanger, "Email already registered.", "/register")
	case errors.Is(err, repository.ErrDuplicateUser):
		redirect(c, session.CategoryDanger, "Username or email already exists.", "/register")
	case errors.Is(err, service.ErrPasswordTooLong):
		redirect(c, session.CategoryDanger, "Password must be at most 72 bytes.", "/register")
	default:
		fail(c, err)
	}
}

// ShowLogin handles GET /login
func (ac *AuthController) ShowLogin(c *gin.Context) {
	page(c, ac.sessions, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Next": c.Query("next"), "Username": ""})
}

// Login handles POST /login
func (ac *AuthController) Login(c *gin.Context) {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	var form models.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		session.Flash(c, session.CategoryDanger, "Invalid username or password")
		page(c, ac.sessions, http.StatusBadRequest, "login.html",
			gin.H{"Title": "Log in", "Next": next, "Username": form.Username})
		return
	}

	user, err := ac.authService.Login(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		session.Flash(c, session.CategoryDanger, "Invalid username or password")
		page(c, ac.sessions, http.StatusUnauthorized, "login.html",
			gin.H{"Title": "Log in", "Next": next, "Username": form.Username})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	if err := ac.sessions.Login(c, user); err != nil {
		fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, safeNext(next, "/dashboard"))
}

// Logout handles GET /logout
func (ac *AuthController) Logout(c *gin.Context, _ *entities.User) {
	ac.sessions.Logout(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowForgotPassword handles GET /forgot-password
func (ac *AuthController) ShowForgotPassword(c *gin.Context) {
	page(c, ac.sessions, http.StatusOK, "forgot_password.html", gin.H{"Title": "Forgot password", "Email": ""})
}

// ForgotPassword handles POST /forgot-password
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var form models.ForgotPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		session.Flash(c, session.CategoryDanger, "Email not found.")
		page(c, ac.sessions, http.StatusBadRequest, "forgot_password.html",
			gin.H{"Title": "Forgot password", "Email": form.Email})
		return
	}

	err := ac.authService.RequestPasswordReset(c.Request.Context(), form.Email, requestBaseURL(c, ac.baseURL))
	if errors.Is(err, service.ErrEmailNotFound) {
		session.Flash(c, session.CategoryDanger, "Email not found.")
		page(c, ac.sessions, http.StatusOK, "forgot_password.html",
			gin.H{"Title": "Forgot password", "Email": form.Email})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	redirect(c, session.CategoryInfo, "Password reset link sent to your email.", "/login")
}

// ShowResetPassword handles GET /reset-password/:token
func (ac *AuthController) ShowResetPassword(c *gin.Context) {
	token := c.Param("token")
	if _, err := ac.authService.CheckResetToken(c.Request.Context(), token); err != nil {
		ac.badResetToken(c, err)
		return
	}
	page(c, ac.sessions, http.StatusOK, "reset_password.html", gin.H{"Title": "Reset password", "Token": token})
}

// ResetPassword handles POST /reset-password/:token
func (ac *AuthController) ResetPassword(c *gin.Context) {
	token := c.Param("token")

	var form models.ResetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		if _, err := ac.authService.CheckResetToken(c.Request.Context(), token); err != nil {
			ac.badResetToken(c, err)
			return
		}
		session.Flash(c, session.CategoryDanger, "Please enter a new password.")
		page(c, ac.sessions, http.StatusBadRequest, "reset_password.html", gin.H{"Title": "Reset password", "Token": token})
		return
	}

	err := ac.authService.ResetPassword(c.Request.Context(), token, &form)
	switch {
	case err == nil:
		redirect(c, session.CategorySuccess, "Your password has been reset successfully.", "/login")
	case errors.Is(err, service.ErrPasswordMismatch):
		session.Flash(c, session.CategoryDanger, "Passwords do not match.")
		page(c, ac.sessions, http.StatusBadRequest, "reset_password.html", gin.H{"Title": "Reset password", "Token": token})
	case errors.Is(err, service.ErrPasswordTooLong):
		session.Flash(c, session.CategoryDanger, "Password must be at most 72 bytes.")
		page(c, ac.sessions, http.StatusBadRequest, "reset_password.html", gin.H{"Title": "Reset password", "Token": token})
	default:
		ac.badResetToken(c, err)
	}
}

func (ac *AuthController) badResetToken(c *gin.Context, err error) {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		redirect(c, session.CategoryDanger, "The password reset link has expired.", "/forgot-password")
	case errors.Is(err, jwt.ErrInvalidToken):
		redirect(c, session.CategoryDanger, "Invalid reset link.", "/forgot-password")
	default:
		fail(c, err)
	}
}
