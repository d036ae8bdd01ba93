package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/jobhunter/internal/handler"
	"github.com/iliyamo/jobhunter/internal/middleware"
	"github.com/iliyamo/jobhunter/internal/model"
)

// registerSeeker registers the routes of signed-in users and the job
// seeker only routes.  Profile reads are open to every role; profile
// writes, saved jobs and applying need the jobSeeker role.
func registerSeeker(e *echo.Echo, p *handler.ProfileHandler, j *handler.JobHandler, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	seeker := middleware.RequireRole(model.RoleJobSeeker)

	e.GET("/users/profile", p.GetProfile, auth)
	e.GET("/users/public-profile/:id", p.PublicProfile)

	e.PATCH("/users/profile/jobseeker", p.UpdateJobSeeker, auth, seeker)
	e.POST("/users/skills", p.AddSkill, auth, seeker)
	e.DELETE("/users/skills/:skill", p.RemoveSkill, auth, seeker)
	e.PATCH("/users/resume", p.UpdateResume, auth, seeker)
	e.GET("/users/saved-jobs", p.SavedJobsList, auth, seeker)
	e.GET("/users/applications", p.MyApplications, auth, seeker)

	e.POST("/save/:id", p.SaveJob, auth, seeker)
	e.DELETE("/save/:id", p.UnsaveJob, auth, seeker)
	e.POST("/apply/:id", j.Apply, auth, seeker)
}
