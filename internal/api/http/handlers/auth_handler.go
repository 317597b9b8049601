package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/subscription-service/internal/api/dto"
	"github.com/spec-kit/subscription-service/internal/auth"
	"github.com/spec-kit/subscription-service/internal/service"
)

// AuthHandler exposes registration, login and password reset endpoints for
// subscribers. Sessions ride an http-only cookie.
type AuthHandler struct {
	auth     *service.AuthService
	cookies  *auth.CookieWriter
	validate *validator.Validate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.CookieWriter) *AuthHandler {
	return &AuthHandler{
		auth:     authService,
		cookies:  cookies,
		validate: validator.New(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	user, token, exp, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Set(c, auth.UserCookieName, token, exp)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"userId":  user.PublicID,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.cookies.Set(c, auth.UserCookieName, token, exp)
	return c.JSON(fiber.Map{
		"success": true,
		"userId":  user.PublicID,
	})
}

// Logout handles POST /auth/logout. Clearing the cookie always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.Clear(c, auth.UserCookieName)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged Out",
	})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	token, err := h.auth.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}

	// the token is returned directly until a mail sender exists
	return c.JSON(fiber.Map{
		"success":    true,
		"resetToken": token.Token,
		"expiresAt":  token.ExpiresAt,
	})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password updated successfully",
	})
}
