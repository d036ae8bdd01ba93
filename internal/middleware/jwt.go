package middleware // middleware holds the echo middleware shared by all route groups

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/model"
    "github.com/iliyamo/jobhunter/internal/utils"
)

// AccessCookie is the cookie that carries the access token for browser
// clients.
const AccessCookie = "accessToken"

// accessToken returns the raw token from the Authorization header or,
// failing that, from the access cookie.
func accessToken(c echo.Context) string {
    if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    }
    if ck, err := c.Cookie(AccessCookie); err == nil {
        return ck.Value
    }
    return ""
}

// identify parses the request's access token.  The role claim must name a
// known role.
func identify(secret string, c echo.Context) (uint64, model.Role, error) {
    raw := accessToken(c)
    if raw == "" {
        return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
    }
    claims, err := utils.ParseAccessToken(secret, raw)
    if err != nil {
        return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired access token")
    }
    role, ok := model.ParseRole(claims.Role)
    if !ok {
        return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "invalid access token role")
    }
    return claims.UserID, role, nil
}

// JWTAuth returns an Echo middleware that validates the access token and
// injects the user id (uint64) and role (model.Role) into the context.
// Requests without a valid token are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, role, err := identify(secret, c)
            if err != nil {
                return err
            }
            setIdentity(c, id, role)
            return next(c)
        }
    }
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through unchanged.
func OptionalAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if id, role, err := identify(secret, c); err == nil {
                setIdentity(c, id, role)
            }
            return next(c)
        }
    }
}
