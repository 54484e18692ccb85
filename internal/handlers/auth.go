// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/oliverandrich/atelier-api/internal/apperror"
	"codeberg.org/oliverandrich/atelier-api/internal/cookies"
	"codeberg.org/oliverandrich/atelier-api/internal/middleware"
	"codeberg.org/oliverandrich/atelier-api/internal/services/auth"
)

// AuthHandlers contains handlers for the authentication lifecycle.
type AuthHandlers struct {
	auth    *auth.Service
	cookies *cookies.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(authService *auth.Service, cookieManager *cookies.Manager) *AuthHandlers {
	return &AuthHandlers{
		auth:    authService,
		cookies: cookieManager,
	}
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and triggers the verification email.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if req.Username == "" || req.Email == "" {
		return apperror.New(apperror.KindValidation, "username and email are required")
	}
	if len(req.Password) < 8 {
		return apperror.New(apperror.KindValidation, "password must be at least 8 characters long")
	}

	user, err := h.auth.Register(c.Request().Context(), auth.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"user":    user,
		"message": "verification email sent to " + user.Email,
	})
}

// FirstStepVerify redeems the emailed verification link and mails the OTP.
func (h *AuthHandlers) FirstStepVerify(c echo.Context) error {
	user, err := h.auth.FirstStepVerification(c.Request().Context(), c.Param("verificationId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"email":   user.Email,
		"message": "verification code sent to " + user.Email,
	})
}

// SecondStepVerifyRequest is the request body for OTP confirmation.
type SecondStepVerifyRequest struct {
	Email      string `json:"email"`
	OtpCode    string `json:"otpCode"`
	RememberMe bool   `json:"rememberMe"`
}

// SecondStepVerify checks the OTP and establishes the first session.
func (h *AuthHandlers) SecondStepVerify(c echo.Context) error {
	var req SecondStepVerifyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if req.Email == "" || req.OtpCode == "" {
		return apperror.New(apperror.KindValidation, "email and otpCode are required")
	}

	result, err := h.auth.SecondStepVerification(c.Request().Context(), req.Email, req.OtpCode, req.RememberMe)
	if err != nil {
		return err
	}

	return h.sessionResponse(c, result, req.RememberMe)
}

// ResendRequest is the request body for re-sending the verification email.
type ResendRequest struct {
	Email string `json:"email"`
}

// ResendVerification mints a fresh verification code, replacing any previous
// one, and mails the link again.
func (h *AuthHandlers) ResendVerification(c echo.Context) error {
	var req ResendRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if req.Email == "" {
		return apperror.New(apperror.KindValidation, "email is required")
	}

	if err := h.auth.ResendVerification(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "verification email sent",
	})
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Login authenticates a user and establishes a session.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperror.New(apperror.KindValidation, "email and password are required")
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		return err
	}

	return h.sessionResponse(c, result, req.RememberMe)
}

// Refresh rotates the refresh token from the scoped cookie and returns a
// fresh access token.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	refreshToken, err := h.cookies.ReadRefreshCookie(c.Request())
	if err != nil {
		return apperror.New(apperror.KindTokenInvalid, "missing refresh token")
	}

	rememberMe := c.QueryParam("rememberMe") == "true"
	result, err := h.auth.Refresh(c.Request().Context(), refreshToken, rememberMe)
	if err != nil {
		h.cookies.ClearRefreshCookie(c.Response())
		return err
	}

	return h.sessionResponse(c, result, rememberMe)
}

// Logout revokes the current refresh token and clears the cookie.
func (h *AuthHandlers) Logout(c echo.Context) error {
	if refreshToken, err := h.cookies.ReadRefreshCookie(c.Request()); err == nil {
		h.auth.Logout(c.Request().Context(), refreshToken)
	}
	h.cookies.ClearRefreshCookie(c.Response())

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

// ResetPasswordRequest is the request body for an authenticated password
// change.
type ResetPasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword changes the authenticated user's password.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return apperror.New(apperror.KindTokenInvalid, "not authenticated")
	}

	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if len(req.NewPassword) < 8 {
		return apperror.New(apperror.KindValidation, "password must be at least 8 characters long")
	}

	err := h.auth.ResetPassword(c.Request().Context(), user.ID, req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "password updated",
	})
}

// ForgetPasswordRequest is the request body for requesting a reset link.
type ForgetPasswordRequest struct {
	Email string `json:"email"`
}

// ForgetPassword mails a password-reset link.
func (h *AuthHandlers) ForgetPassword(c echo.Context) error {
	var req ForgetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if req.Email == "" {
		return apperror.New(apperror.KindValidation, "email is required")
	}

	if err := h.auth.SendPasswordResetURL(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "password reset email sent",
	})
}

// ResetForgottenPasswordRequest is the request body for redeeming a reset
// code.
type ResetForgottenPasswordRequest struct {
	VerificationCode string `json:"verificationCode"`
	NewPassword      string `json:"newPassword"`
}

// ResetForgottenPassword redeems a reset code and clears any session cookie,
// forcing a fresh login.
func (h *AuthHandlers) ResetForgottenPassword(c echo.Context) error {
	var req ResetForgottenPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.New(apperror.KindValidation, "invalid request body")
	}
	if req.VerificationCode == "" {
		return apperror.New(apperror.KindValidation, "verificationCode is required")
	}
	if len(req.NewPassword) < 8 {
		return apperror.New(apperror.KindValidation, "password must be at least 8 characters long")
	}

	if _, err := h.auth.ResetForgottenPassword(c.Request().Context(), req.VerificationCode, req.NewPassword); err != nil {
		return err
	}
	h.cookies.ClearRefreshCookie(c.Response())

	return c.JSON(http.StatusOK, map[string]string{
		"message": "password updated, please log in again",
	})
}

// Me returns the authenticated user.
func (h *AuthHandlers) Me(c echo.Context) error {
	user := middleware.UserFromContext(c)
	if user == nil {
		return apperror.New(apperror.KindTokenInvalid, "not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// sessionResponse sets the refresh cookie and returns the access token plus
// the user. The refresh token never appears in the body.
func (h *AuthHandlers) sessionResponse(c echo.Context, result *auth.Result, rememberMe bool) error {
	if err := h.cookies.SetRefreshCookie(c.Response(), result.Pair.RefreshToken, rememberMe); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"accessToken": result.Pair.AccessToken,
		"user":        result.User,
	})
}
