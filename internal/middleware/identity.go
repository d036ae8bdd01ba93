package middleware

// identity.go holds the context keys set by JWTAuth and the helpers that
// read them back.  Handlers and the rate limiter share these helpers so the
// identity is always read the same way.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/model"
)

const (
    userIDKey = "user_id"
    roleKey   = "role"
)

// UserID returns the authenticated user's id, if any.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(userIDKey).(uint64)
    return id, ok && id > 0
}

// Role returns the authenticated user's role, or "" for guests.
func Role(c echo.Context) model.Role {
    r, _ := c.Get(roleKey).(model.Role)
    return r
}

func setIdentity(c echo.Context, id uint64, role model.Role) {
    c.Set(userIDKey, id)
    c.Set(roleKey, role)
}

// userKey is the identity part of rate limit keys.
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}
