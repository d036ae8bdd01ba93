package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/jobhunter/internal/handler"
	"github.com/iliyamo/jobhunter/internal/middleware"
	"github.com/iliyamo/jobhunter/internal/model"
)

// registerEmployer registers the employer-scoped endpoints.  All routes
// require a valid JWT and the employer role, except the job toggle which
// admins may use too.  Static /company paths win over GET /company/:id.
func registerEmployer(e *echo.Echo, j *handler.JobHandler, c *handler.CompanyHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	employer := middleware.RequireRole(model.RoleEmployer)

	e.POST("/post-new-job", j.PostJob, auth, employer)
	e.POST("/generate-job-description", j.GenerateDescription, auth, employer)
	e.PATCH("/job/:id/toggle-active", j.ToggleActive, auth, middleware.RequireRole(model.RoleEmployer, model.RoleAdmin))

	e.PUT("/company/:id", c.UpdateCompany, auth, employer)

	g := e.Group("/company")
	g.GET("/listings", j.Listings, auth, employer)
	g.GET("/active-listings", j.ActiveListings, auth, employer)
	g.GET("/non-active-listings", j.InactiveListings, auth, employer)

	g.GET("/applications", c.PendingApplications, auth, employer)
	g.GET("/shortlisted-candidates", c.Shortlisted, auth, employer)
	g.GET("/applicant-messages", c.Messages, auth, employer)
	g.POST("/shortlist-candidate", c.Shortlist, auth, employer)
	g.POST("/remove-from-applications", c.RemoveFromApplications, auth, employer)
	g.POST("/remove-from-shortlisted", c.RemoveFromShortlist, auth, employer)

	g.GET("/notifications", c.ListNotifications, auth, employer)
	g.PATCH("/notifications/:id/read", c.MarkNotificationRead, auth, employer)
}
