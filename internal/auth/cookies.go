package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names carrying the user and admin sessions.
const (
	UserCookieName  = "token"
	AdminCookieName = "adminToken"
)

// CookieWriter issues and clears http-only session cookies. In production
// cookies are Secure with SameSite=None; elsewhere SameSite=Strict so local
// clients work without TLS.
type CookieWriter struct {
	production bool
}

// NewCookieWriter constructs the writer.
func NewCookieWriter(production bool) *CookieWriter {
	return &CookieWriter{production: production}
}

// Set writes a session cookie expiring with its token.
func (w *CookieWriter) Set(c *fiber.Ctx, name, value string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   w.production,
		SameSite: w.sameSite(),
	})
}

// Clear removes a session cookie unconditionally.
func (w *CookieWriter) Clear(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   w.production,
		SameSite: w.sameSite(),
	})
}

func (w *CookieWriter) sameSite() string {
	if w.production {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteStrictMode
}
