package auth

import "github.com/labstack/echo/v4"

const ClaimsContextKey = "claims"

// RequirePermission only lets requests through that carry a valid bearer
// token holding the permission. The claims are stored on the context.
func RequirePermission(verifier *Verifier, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := TokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			claims, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				return err
			}
			if err := CheckPermissions(permission, claims); err != nil {
				return err
			}
			c.Set(ClaimsContextKey, claims)
			return next(c)
		}
	}
}

// ClaimsFromContext returns the claims stored by RequirePermission.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*Claims)
	return claims, ok
}
