package models

// RegisterForm represents the registration form submission
type RegisterForm struct {
	Username    string `form:"username" binding:"required,max=100"`
	Email       string `form:"email" binding:"required,email,max=100"`
	Password    string `form:"password" binding:"required"`
	PhoneNumber string `form:"phone_number" binding:"required,max=20"`
}

// LoginForm represents the login form submission
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// ForgotPasswordForm represents the password reset request form
type ForgotPasswordForm struct {
	Email string `form:"email" binding:"required"`
}

// ResetPasswordForm represents the new password form reached from a reset link
type ResetPasswordForm struct {
	NewPassword     string `form:"new_password" binding:"required"`
	ConfirmPassword string `form:"confirm_password"`
}

// EditProfileForm represents the profile form. NewPassword is optional; when empty the password is kept.
type EditProfileForm struct {
	Username        string `form:"username" binding:"required,max=100"`
	Email           string `form:"email" binding:"required,email,max=100"`
	PhoneNumber     string `form:"phone_number" binding:"required,max=20"`
	NewPassword     string `form:"new_password"`
	ConfirmPassword string `form:"confirm_password"`
}

// CancelAccountForm must carry the literal "CANCEL" in Confirm
type CancelAccountForm struct {
	Confirm string `form:"confirm"`
}

// VerifyPhoneForm carries the 6-digit code sent by SMS
type VerifyPhoneForm struct {
	Code string `form:"code" binding:"required"`
}
