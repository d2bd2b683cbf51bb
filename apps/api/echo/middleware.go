package echoapi

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/user"
	"github.com/aykutjm/ogrencim/services/ratelimit"
)

// roleMiddleware lets through the requests whose token carries one of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if hasAnyRole(claims, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func hasAnyRole(claims Claims, roles []string) bool {
	for _, role := range roles {
		if claims.Role == role {
			return true
		}
	}
	return false
}

// rateLimitMiddleware limits the requests of a client IP per route.
// When the limiter store fails the request is let through.
func rateLimitMiddleware(limiter ratelimit.Limiter, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if limiter == nil {
				return next(ctx)
			}
			key := ctx.Path() + ":" + ctx.RealIP()
			ok, err := limiter.Allow(ctx.Request().Context(), key)
			if err != nil {
				logger.Error(fmt.Sprintf("rate limiter: %v", err), err)
				return next(ctx)
			}
			if !ok {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}

// institutionScope returns the institution a query of the caller is restricted to: callers attached
// to an institution only see theirs, except superadmins who may pick one.
func institutionScope(claims Claims, requested string) string {
	if claims.Role == user.RoleSuperAdmin || claims.InstitutionID == "" {
		return requested
	}
	return claims.InstitutionID
}
