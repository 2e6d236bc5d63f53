package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountly/internal/entities"
	"accountly/internal/models"
	"accountly/internal/repository"
	"accountly/internal/service"
	"accountly/internal/session"
)

// ProfileController serves the pages that need a signed-in user.
// Its handlers are mounted through session.Manager.Protect.
type ProfileController struct {
	authService service.AuthService
	sessions    *session.Manager
}

func NewProfileController(authService service.AuthService, sessions *session.Manager) *ProfileController {
	return &ProfileController{
		authService: authService,
		sessions:    sessions,
	}
}

// Dashboard handles GET /dashboard
func (pc *ProfileController) Dashboard(c *gin.Context, user *entities.User) {
	page(c, pc.sessions, http.StatusOK, "dashboard.html", gin.H{"Title": "Dashboard", "User": user})
}

// ShowEditProfile handles GET /edit-profile
func (pc *ProfileController) ShowEditProfile(c *gin.Context, user *entities.User) {
	form := &models.EditProfileForm{
		Username:    user.Username,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
	}
	page(c, pc.sessions, http.StatusOK, "edit_profile.html", gin.H{"Title": "Edit profile", "User": user, "Form": form})
}

// EditProfile handles POST /edit-profile
func (pc *ProfileController) EditProfile(c *gin.Context, user *entities.User) {
	var form models.EditProfileForm
	if err := c.ShouldBind(&form); err != nil {
		pc.redisplayProfile(c, user, &form, "Please fill in every field with a valid value.")
		return
	}

	err := pc.authService.UpdateProfile(c.Request.Context(), user, &form)
	switch {
	case err == nil:
		redirect(c, session.CategorySuccess, "Profile updated successfully", "/dashboard")
	case errors.Is(err, service.ErrPasswordMismatch):
		pc.redisplayProfile(c, user, &form, "Passwords do not match")
	case errors.Is(err, repository.ErrDuplicateUser):
		pc.redisplayProfile(c, user, &form, "Username or email already in use")
	case errors.Is(err, service.ErrPasswordTooLong):
		pc.redisplayProfile(c, user, &form, "Password must be at most 72 bytes.")
	default:
		fail(c, err)
	}
}

func (pc *ProfileController) redisplayProfile(c *gin.Context, user *entities.User, form *models.EditProfileForm, message string) {
	form.NewPassword, form.ConfirmPassword = "", ""
	session.Flash(c, session.CategoryDanger, message)
	page(c, pc.sessions, http.StatusBadRequest, "edit_profile.html", gin.H{"Title": "Edit profile", "User": user, "Form": form})
}

// ShowCancelAccount handles GET /cancel-account
func (pc *ProfileController) ShowCancelAccount(c *gin.Context, user *entities.User) {
	page(c, pc.sessions, http.StatusOK, "cancel_account.html", gin.H{"Title": "Cancel account", "User": user})
}

// CancelAccount handles POST /cancel-account
func (pc *ProfileController) CancelAccount(c *gin.Context, user *entities.User) {
	var form models.CancelAccountForm
	_ = c.ShouldBind(&form)

	err := pc.authService.CancelAccount(c.Request.Context(), user, form.Confirm)
	if errors.Is(err, service.ErrConfirmationRequired) {
		session.Flash(c, session.CategoryDanger, "Please type CANCEL to confirm account cancellation")
		page(c, pc.sessions, http.StatusBadRequest, "cancel_account.html", gin.H{"Title": "Cancel account", "User": user})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	pc.sessions.Logout(c)
	redirect(c, session.CategoryInfo, "Your account has been cancelled", "/")
}

// ShowVerifyPhone handles GET /verify-phone
func (pc *ProfileController) ShowVerifyPhone(c *gin.Context, user *entities.User) {
	page(c, pc.sessions, http.StatusOK, "verify_phone.html", gin.H{"Title": "Verify phone", "User": user})
}

// VerifyPhone handles POST /verify-phone
func (pc *ProfileController) VerifyPhone(c *gin.Context, user *entities.User) {
	var form models.VerifyPhoneForm
	_ = c.ShouldBind(&form)

	err := pc.authService.VerifyPhone(c.Request.Context(), user, form.Code)
	switch {
	case err == nil:
		redirect(c, session.CategorySuccess, "Phone number verified.", "/dashboard")
	case errors.Is(err, service.ErrInvalidVerificationCode):
		session.Flash(c, session.CategoryDanger, "Invalid or expired verification code.")
		page(c, pc.sessions, http.StatusBadRequest, "verify_phone.html", gin.H{"Title": "Verify phone", "User": user})
	case errors.Is(err, service.ErrVerificationUnavailable):
		redirect(c, session.CategoryDanger, "Phone verification is currently unavailable.", "/dashboard")
	default:
		fail(c, err)
	}
}

// ResendCode handles POST /verify-phone/resend
func (pc *ProfileController) ResendCode(c *gin.Context, user *entities.User) {
	err := pc.authService.ResendVerificationCode(c.Request.Context(), user)
	switch {
	case err == nil:
		redirect(c, session.CategoryInfo, "A new verification code has been sent.", "/verify-phone")
	case errors.Is(err, service.ErrVerificationUnavailable):
		redirect(c, session.CategoryDanger, "Phone verification is currently unavailable.", "/dashboard")
	default:
		fail(c, err)
	}
}
