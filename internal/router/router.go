package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/jobhunter/internal/config"
	"github.com/iliyamo/jobhunter/internal/handler"
	"github.com/iliyamo/jobhunter/internal/middleware"
)

// Handlers bundles every handler the API serves.
type Handlers struct {
	Auth     *handler.AuthHandler
	Profile  *handler.ProfileHandler
	Job      *handler.JobHandler
	Company  *handler.CompanyHandler
	Admin    *handler.AdminHandler
	Feedback *handler.FeedbackHandler
}

// Options carries the settings of the shared middleware.  A nil Redis
// client turns rate limiting and caching into pass-throughs.
type Options struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
}

// RegisterRoutes installs the global rate limiter and registers every
// route of the API.
func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	e.Use(middleware.NewTokenBucket(opt.RateLimit, opt.Redis))

	e.GET("/healthz", handler.Health)
	e.GET("/ping", handler.Ping)

	registerAuth(e, h.Auth, opt)
	registerCatalog(e, h.Job, h.Company, h.Feedback, opt)
	registerSeeker(e, h.Profile, h.Job, opt.JWTSecret)
	registerEmployer(e, h.Job, h.Company, opt.JWTSecret)
	registerAdmin(e, h.Admin, opt.JWTSecret)
}

// registerAuth registers the session endpoints.  They get a second, much
// smaller token bucket on top of the global one.
func registerAuth(e *echo.Echo, a *handler.AuthHandler, opt Options) {
	strict := middleware.NewTokenBucket(opt.RateLimit.WithCapacity(opt.RateLimit.AuthCapacity, "auth"), opt.Redis)
	g := e.Group("/users")

	g.POST("/signup", a.Signup, strict)
	g.POST("/login", a.Login, strict)
	g.POST("/refresh", a.Refresh, strict)
	g.POST("/forgot-password", a.ForgotPassword, strict)
	g.POST("/reset-password", a.ResetPassword, strict)

	// Logout works with either token, or none at all.
	g.GET("/logout", a.Logout, middleware.OptionalAuth(opt.JWTSecret))
	g.POST("/logout", a.Logout, middleware.OptionalAuth(opt.JWTSecret))

	g.PATCH("/change-password", a.ChangePassword, strict, middleware.JWTAuth(opt.JWTSecret))
}

// registerCatalog registers the endpoints anyone may call.  GET responses
// are cached in Redis and purged on every catalog write.
func registerCatalog(e *echo.Echo, j *handler.JobHandler, c *handler.CompanyHandler, f *handler.FeedbackHandler, opt Options) {
	cache := middleware.NewRedisCache(opt.Cache, opt.Redis)

	e.GET("/jobs", j.ListJobs, cache)
	e.GET("/job/:id", j.GetJob, cache)
	e.GET("/job-locations", j.Locations, cache)
	e.GET("/companies", c.ListCompanies, cache)
	e.GET("/company/:id", c.GetCompany, cache)

	e.POST("/feedback", f.Create, middleware.OptionalAuth(opt.JWTSecret))
}
