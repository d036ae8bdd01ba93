package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/jobhunter/internal/handler"
	"github.com/iliyamo/jobhunter/internal/middleware"
	"github.com/iliyamo/jobhunter/internal/model"
)

// registerAdmin registers the moderation endpoints under /admin.  All
// routes require a valid JWT and the admin role.
func registerAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.GET("/ping", a.Ping)
	g.GET("/stats", a.Stats)
	g.GET("/admins-count", a.AdminsCount)

	g.GET("/users", a.ListUsers)
	g.DELETE("/users/:id", a.DeleteUser)
	g.PATCH("/users/:id/promote", a.Promote)

	g.GET("/companies", a.ListCompanies)
	g.DELETE("/companies/:id", a.DeleteCompany)

	g.GET("/jobs", a.ListJobs)
	g.DELETE("/jobs/:id", a.DeleteJob)

	g.GET("/feedback", a.ListFeedback)
	g.DELETE("/feedback/:id", a.DeleteFeedback)
}
