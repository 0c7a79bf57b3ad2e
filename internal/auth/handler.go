package auth

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// renderForm returns the flashed state of a form endpoint. View
// rendering proper is supplied outside this application.
func (h *Handler) renderForm(c *gin.Context) {
	fieldErrors, old, status := consumeFlash(c)
	c.JSON(http.StatusOK, gin.H{
		"errors": fieldErrors,
		"old":    old,
		"status": status,
	})
}

func (h *Handler) ShowLogin(c *gin.Context)          { h.renderForm(c) }
func (h *Handler) ShowRegister(c *gin.Context)       { h.renderForm(c) }
func (h *Handler) ShowForgotPassword(c *gin.Context) { h.renderForm(c) }
func (h *Handler) ShowResetPassword(c *gin.Context)  { h.renderForm(c) }

func (h *Handler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	old := map[string]string{"email": email}

	fieldErrors := map[string]string{}
	if email == "" {
		fieldErrors["email"] = "the email field is required"
	}
	if password == "" {
		fieldErrors["password"] = "the password field is required"
	}
	if len(fieldErrors) > 0 {
		flashErrors(c, fieldErrors, old)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.service.Attempt(c.Request.Context(), email, password, c.ClientIP())
	if err != nil {
		var throttled *ThrottledError
		switch {
		case errors.As(err, &throttled):
			h.log.Warn("login throttled",
				zap.String("ip", c.ClientIP()),
				zap.Duration("retry_in", throttled.RetryIn))
			flashErrors(c, map[string]string{"email": throttled.Error()}, old)
			c.Redirect(http.StatusFound, "/login")
		case errors.Is(err, ErrInvalidCredentials):
			flashErrors(c, map[string]string{"email": err.Error()}, old)
			c.Redirect(http.StatusFound, "/login")
		default:
			h.log.Error("login failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.establishSession(c, user)
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.log.Error("failed to clear session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Register(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirmation := c.PostForm("password_confirmation")
	old := map[string]string{"name": name, "email": email}

	fieldErrors := map[string]string{}

	if name == "" {
		fieldErrors["name"] = "the name field is required"
	}

	switch {
	case email == "":
		fieldErrors["email"] = "the email field is required"
	case !isValidEmail(email):
		fieldErrors["email"] = "the email must be a valid email address"
	default:
		if _, err := h.service.repository.GetUserByEmail(email); err == nil {
			fieldErrors["email"] = "the email has already been taken"
		}
	}

	switch {
	case password == "":
		fieldErrors["password"] = "the password field is required"
	case password != confirmation:
		fieldErrors["password"] = "the password confirmation does not match"
	default:
		if err := ValidatePassword(password); err != nil {
			fieldErrors["password"] = err.Error()
		}
	}

	if len(fieldErrors) > 0 {
		flashErrors(c, fieldErrors, old)
		c.Redirect(http.StatusFound, "/register")
		return
	}

	user, err := h.service.Register(c.Request.Context(), name, email, password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			flashErrors(c, map[string]string{"email": "the email has already been taken"}, old)
			c.Redirect(http.StatusFound, "/register")
			return
		}
		h.log.Error("failed to register user", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to register")
		return
	}

	h.establishSession(c, user)
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	old := map[string]string{"email": email}

	switch {
	case email == "":
		flashErrors(c, map[string]string{"email": "the email field is required"}, old)
		c.Redirect(http.StatusFound, "/forgot-password")
		return
	case !isValidEmail(email):
		flashErrors(c, map[string]string{"email": "the email must be a valid email address"}, old)
		c.Redirect(http.StatusFound, "/forgot-password")
		return
	}

	if err := h.service.SendPasswordResetLink(c.Request.Context(), email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			flashErrors(c, map[string]string{"email": "we can't find a user with that email address"}, old)
			c.Redirect(http.StatusFound, "/forgot-password")
			return
		}
		h.log.Error("failed to send password reset link", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to send reset link")
		return
	}

	flashStatus(c, "we have emailed your password reset link")
	c.Redirect(http.StatusFound, "/forgot-password")
}

func (h *Handler) ResetPassword(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	token := c.PostForm("token")
	password := c.PostForm("password")
	confirmation := c.PostForm("password_confirmation")
	old := map[string]string{"email": email}

	fieldErrors := map[string]string{}

	switch {
	case email == "":
		fieldErrors["email"] = "the email field is required"
	case !isValidEmail(email):
		fieldErrors["email"] = "the email must be a valid email address"
	}
	if token == "" {
		fieldErrors["token"] = "the token field is required"
	}
	switch {
	case password == "":
		fieldErrors["password"] = "the password field is required"
	case password != confirmation:
		fieldErrors["password"] = "the password confirmation does not match"
	default:
		if err := ValidatePassword(password); err != nil {
			fieldErrors["password"] = err.Error()
		}
	}

	if len(fieldErrors) > 0 {
		flashErrors(c, fieldErrors, old)
		c.Redirect(http.StatusFound, "/reset-password")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), email, token, password); err != nil {
		if errors.Is(err, ErrInvalidResetToken) || errors.Is(err, ErrUserNotFound) {
			flashErrors(c, map[string]string{"email": ErrInvalidResetToken.Error()}, old)
			c.Redirect(http.StatusFound, "/reset-password")
			return
		}
		h.log.Error("failed to reset password", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to reset password")
		return
	}

	flashStatus(c, "your password has been reset")
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) Dashboard(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	_, _, status := consumeFlash(c)
	c.JSON(http.StatusOK, gin.H{
		"name":           user.Name,
		"email":          user.Email,
		"email_verified": user.HasVerifiedEmail(),
		"status":         status,
	})
}

func (h *Handler) VerificationNotice(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if user.HasVerifiedEmail() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	_, _, status := consumeFlash(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "please verify your email address",
		"status":  status,
	})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	// Already-verified users are redirected without reprocessing.
	_, err := h.service.VerifyEmail(
		c.Request.Context(),
		user,
		c.Param("id"),
		c.Param("hash"),
		c.Query("token"),
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrLinkSignatureInvalid), errors.Is(err, ErrLinkUserMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			h.log.Error("failed to verify email", zap.Error(err))
			c.String(http.StatusInternalServerError, "failed to verify email")
		}
		return
	}

	c.Redirect(http.StatusFound, "/dashboard?verified=1")
}

func (h *Handler) ResendVerification(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), user); err != nil {
		if errors.Is(err, ErrAlreadyVerified) {
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
		h.log.Error("failed to resend verification link", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to resend verification")
		return
	}

	flashStatus(c, "a fresh verification link has been sent to your email address")
	c.Redirect(http.StatusFound, "/email/verify")
}

func (h *Handler) establishSession(c *gin.Context, user *User) {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserIDKey, user.ID)
	if err := session.Save(); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
	}
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
