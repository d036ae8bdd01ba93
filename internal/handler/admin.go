package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/model"
    "github.com/iliyamo/jobhunter/internal/repository"
    "github.com/iliyamo/jobhunter/internal/service"
)

// AdminHandler exposes the moderation endpoints.  Every route is behind
// RequireRole(admin).
type AdminHandler struct {
    Users      *repository.UserRepo
    Jobs       *repository.JobRepo
    Feedback   *repository.FeedbackRepo
    Moderation *service.ModerationService
    Purge      func(ctx context.Context)
}

func (h *AdminHandler) purge(c echo.Context) {
    if h.Purge != nil {
        h.Purge(c.Request().Context())
    }
}

func accounts(users []*model.User) []model.Account {
    out := make([]model.Account, 0, len(users))
    for _, u := range users {
        out = append(out, u.Account())
    }
    return out
}

func (h *AdminHandler) Ping(c echo.Context) error {
    return respond(c, http.StatusOK, echo.Map{}, "Hello Admin! Access granted.")
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    users, err := h.Users.List(ctx, "")
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, accounts(users), "Users fetched successfully")
}

func (h *AdminHandler) ListCompanies(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    users, err := h.Users.List(ctx, model.RoleEmployer)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, accounts(users), "Companies fetched successfully")
}

func (h *AdminHandler) ListJobs(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    jobs, err := h.Jobs.ListAll(ctx)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, jobs, "Jobs fetched successfully")
}

func (h *AdminHandler) ListFeedback(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    msgs, err := h.Feedback.List(ctx)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, msgs, "Feedback messages fetched successfully")
}

func (h *AdminHandler) Stats(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    st, err := h.Moderation.Stats(ctx)
    if err != nil {
        return &APIError{Status: http.StatusInternalServerError, Message: "Failed to fetch admin statistics", Err: err}
    }
    return respond(c, http.StatusOK, st, "Statistics fetched successfully")
}

func (h *AdminHandler) AdminsCount(c echo.Context) error {
    ctx, cancel := reqCtx(c)
    defer cancel()

    n, err := h.Users.CountByRole(ctx, model.RoleAdmin)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{"count": n}, "Admins counted successfully")
}

// DeleteUser removes an account and everything it owns.  Admins cannot
// delete themselves or the last admin.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Moderation.DeleteUser(ctx, caller(c).ID, id); err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, echo.Map{}, "User deleted successfully")
}

func (h *AdminHandler) DeleteCompany(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Moderation.DeleteCompany(ctx, caller(c).ID, id); err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, echo.Map{}, "Company deleted successfully")
}

func (h *AdminHandler) DeleteJob(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Moderation.DeleteJob(ctx, id); err != nil {
        return err
    }
    h.purge(c)
    return respond(c, http.StatusOK, echo.Map{}, "Job deleted successfully")
}

func (h *AdminHandler) DeleteFeedback(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Feedback.Delete(ctx, id); err != nil {
        return err
    }
    return respond(c, http.StatusOK, echo.Map{}, "Feedback message deleted successfully")
}

// Promote makes a user an admin.  Promoting an admin again is a no-op.
func (h *AdminHandler) Promote(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Moderation.Promote(ctx, id)
    if err != nil {
        return err
    }
    return respond(c, http.StatusOK, u.Account(), "User promoted to admin")
}
