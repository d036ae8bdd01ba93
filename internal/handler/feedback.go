package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/jobhunter/internal/middleware"
    "github.com/iliyamo/jobhunter/internal/service"
)

type FeedbackHandler struct {
    Feedback *service.FeedbackService
}

type feedbackReq struct {
    Name    string `json:"name"`
    Email   string `json:"email"`
    Message string `json:"message"`
}

// Create stores a feedback message.  The route runs OptionalAuth, so a
// signed-in sender is linked to their account.
func (h *FeedbackHandler) Create(c echo.Context) error {
    var req feedbackReq
    if err := bind(c, &req); err != nil {
        return err
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    var userID *uint64
    if id, ok := middleware.UserID(c); ok {
        userID = &id
    }
    f, err := h.Feedback.Submit(ctx, userID, req.Name, req.Email, req.Message)
    if err != nil {
        return err
    }
    return respond(c, http.StatusCreated, f, "Feedback sent successfully")
}
