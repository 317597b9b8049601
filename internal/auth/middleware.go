package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/subscription-service/internal/domain"
	apperrors "github.com/spec-kit/subscription-service/pkg/util"
)

const adminClaimsKey = "admin_claims"

// AdminMiddleware validates the admin session cookie on protected routes.
type AdminMiddleware struct {
	tokens *TokenManager
}

// NewAdminMiddleware constructs middleware.
func NewAdminMiddleware(tokens *TokenManager) *AdminMiddleware {
	return &AdminMiddleware{tokens: tokens}
}

// Handle rejects requests unless a valid admin token cookie asserts the
// fixed admin identity and role.
func (m *AdminMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := c.Cookies(AdminCookieName)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("Authentication required")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("Invalid token")
	}

	if claims.Subject != domain.SubjectTypeAdmin ||
		claims.SubjectID != domain.AdminSubjectID ||
		claims.Role == nil || (*claims.Role != domain.AdminRoleAdmin && *claims.Role != domain.AdminRoleSuperAdmin) {
		return apperrors.NewUnauthorized("Invalid admin token")
	}

	c.Locals(adminClaimsKey, claims)
	return c.Next()
}

// AdminClaimsFromContext retrieves the validated admin claims.
func AdminClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(adminClaimsKey).(*Claims)
	return claims, ok
}

// RequireSuperAdmin is a stricter gate on top of the admin middleware.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := AdminClaimsFromContext(c)
		if !ok || claims.Role == nil || *claims.Role != domain.AdminRoleSuperAdmin {
			return apperrors.NewForbidden("Super admin access required")
		}
		return c.Next()
	}
}
