package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/config"
    "github.com/iliyamo/jobhunter/internal/middleware"
    "github.com/iliyamo/jobhunter/internal/model"
    "github.com/iliyamo/jobhunter/internal/service"
)

// RefreshCookie carries the refresh token for browser clients.
const RefreshCookie = "refreshToken"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg      config.Config
    Accounts *service.AccountService
}

func NewAuthHandler(cfg config.Config, accounts *service.AccountService) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Accounts: accounts}
}

// ----- DTOs -----

type signupReq struct {
    Email       string `json:"email"`
    Password    string `json:"password"`
    Role        string `json:"role"` // employer | jobSeeker
    Name        string `json:"name"`
    CompanyName string `json:"companyName"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refreshToken"`
}
type forgotReq struct {
    Email string `json:"email"`
}
type resetReq struct {
    Token    string `json:"token"`
    Password string `json:"password"`
}
type changePasswordReq struct {
    CurrentPassword string `json:"currentPassword"`
    NewPassword     string `json:"newPassword"`
}

type sessionResp struct {
    User                  model.Account `json:"user"`
    AccessToken           string        `json:"accessToken"`
    AccessTokenExpiresAt  time.Time     `json:"accessTokenExpiresAt"`
    RefreshToken          string        `json:"refreshToken"`
    RefreshTokenExpiresAt time.Time     `json:"refreshTokenExpiresAt"`
}

// cookie builds a session cookie.  Cross-site cookies need Secure and
// SameSite=None, which browsers only accept over HTTPS.
func (h *AuthHandler) cookie(name, value string, exp time.Time) *http.Cookie {
    ck := &http.Cookie{
        Name:     name,
        Value:    value,
        Path:     "/",
        Domain:   h.Cfg.CookieDomain,
        Expires:  exp,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    }
    if h.Cfg.Production() {
        ck.Secure = true
        ck.SameSite = http.SameSiteNoneMode
    }
    return ck
}

// startSession sets both cookies and writes the session body.
func (h *AuthHandler) startSession(c echo.Context, status int, s *service.Session, msg string) error {
    c.SetCookie(h.cookie(middleware.AccessCookie, s.Access.Token, s.Access.Exp))
    c.SetCookie(h.cookie(RefreshCookie, s.Refresh.Raw, s.Refresh.Exp))
    return respond(c, status, sessionResp{
        User:                  s.User.Account(),
        AccessToken:           s.Access.Token,
        AccessTokenExpiresAt:  s.Access.Exp,
        RefreshToken:          s.Refresh.Raw,
        RefreshTokenExpiresAt: s.Refresh.Exp,
    }, msg)
}

func (h *AuthHandler) clearSession(c echo.Context) {
    for _, name := range []string{middleware.AccessCookie, RefreshCookie} {
        ck := h.cookie(name, "", time.Unix(0, 0))
        ck.MaxAge = -1
        c.SetCookie(ck)
    }
}

// Signup: create user and log them in immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    s, err := h.Accounts.Signup(ctx, service.SignupInput{
        Email:       req.Email,
        Password:    req.Password,
        Role:        req.Role,
        Name:        req.Name,
        CompanyName: req.CompanyName,
    })
    if err != nil {
        return err
    }
    return h.startSession(c, http.StatusCreated, s, "User registered successfully")
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    s, err := h.Accounts.Login(ctx, req.Email, req.Password)
    if err != nil {
        return err
    }
    return h.startSession(c, http.StatusOK, s, "User login successful")
}

// refreshToken reads the refresh token from the cookie or, failing that,
// from the body.
func refreshToken(c echo.Context) (string, error) {
    if ck, err := c.Cookie(RefreshCookie); err == nil && ck.Value != "" {
        return ck.Value, nil
    }
    var req refreshReq
    if err := bind(c, &req); err != nil {
        return "", err
    }
    return req.RefreshToken, nil
}

// Refresh: validate the refresh token, rotate it and issue a new access
// token.
func (h *AuthHandler) Refresh(c echo.Context) error {
    raw, err := refreshToken(c)
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    s, err := h.Accounts.Refresh(ctx, raw)
    if err != nil {
        h.clearSession(c)
        return err
    }
    return h.startSession(c, http.StatusOK, s, "Access token refreshed")
}

// Logout ends the session of the caller, identified by the access token or
// by the refresh token, and clears both cookies.  It succeeds even when
// the session is already gone.
func (h *AuthHandler) Logout(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    if id, ok := middleware.UserID(c); ok {
        if err := h.Accounts.Logout(ctx, id); err != nil {
            return err
        }
    } else if ck, err := c.Cookie(RefreshCookie); err == nil {
        if err := h.Accounts.LogoutRefresh(ctx, ck.Value); err != nil {
            return err
        }
    }
    h.clearSession(c)
    return respond(c, http.StatusOK, echo.Map{}, "User logged out")
}

// ForgotPassword always answers the same way so that it cannot be used to
// find out which emails are registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
    var req forgotReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Accounts.ForgotPassword(ctx, req.Email); err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{}, "If this email exists, a reset link has been sent.")
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
    var req resetReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Accounts.ResetPassword(ctx, req.Token, req.Password); err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{}, "Password reset successfully")
}

// ChangePassword requires a logged in user.  The session ends with the
// old password, so the cookies are cleared too.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
    var req changePasswordReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Accounts.ChangePassword(ctx, caller(c).ID, req.CurrentPassword, req.NewPassword); err != nil {
        return err
    }
    h.clearSession(c)
    return respond(c, http.StatusOK, echo.Map{}, "Password changed successfully")
}
