package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ecoeats/internal/domain"
	apperrors "github.com/spec-kit/ecoeats/pkg/util/errorutil"
)

// RequireRole ensures the principal has one of the allowed roles. With no
// arguments it only requires authentication.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role()]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequirePartner ensures the principal acts on behalf of a partner and
// returns its id via locals for handlers.
func RequirePartner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.IsPartnerAffiliated() {
			return apperrors.NewForbidden("partner affiliation required")
		}
		return c.Next()
	}
}
