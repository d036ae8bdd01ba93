package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/jobhunter/internal/ai"
	"github.com/iliyamo/jobhunter/internal/config"
	"github.com/iliyamo/jobhunter/internal/database"
	"github.com/iliyamo/jobhunter/internal/handler"
	"github.com/iliyamo/jobhunter/internal/mail"
	"github.com/iliyamo/jobhunter/internal/middleware"
	"github.com/iliyamo/jobhunter/internal/queue"
	"github.com/iliyamo/jobhunter/internal/reporter"
	"github.com/iliyamo/jobhunter/internal/repository"
	"github.com/iliyamo/jobhunter/internal/router"
	"github.com/iliyamo/jobhunter/internal/service"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	purge := func(ctx context.Context) {
		if err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix); err != nil {
			log.Printf("cache purge: %v", err)
		}
	}

	// Side effects run in the consumer; the API only publishes.
	events := queue.NewPublisher(cfg.AMQPURL)
	defer events.Close()
	go func() {
		if err := queue.StartConsumer(ctx, cfg.AMQPURL, newDispatcher(ctx, cfg)); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event-consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	jobs := repository.NewJobRepo(db)
	apps := repository.NewApplicationRepo(db)
	feedback := repository.NewFeedbackRepo(db)

	accounts := service.NewAccountService(cfg, users, tokens, events)
	if err := accounts.SeedAdmin(ctx); err != nil {
		log.Fatalf("%v", err)
	}
	profiles := service.NewProfileService(users)
	applications := service.NewApplicationService(apps, users, events)
	moderation := service.NewModerationService(repository.NewModerationRepo(db))
	descriptions := service.NewDescriptionService(users, newGenerator(ctx))

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				log.Printf("%s %s -> %d (%s): %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
			} else {
				log.Printf("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			}
			return nil
		},
	}))

	router.RegisterRoutes(e, router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, accounts),
		Profile: handler.NewProfileHandler(profiles, repository.NewSavedJobRepo(db), apps),
		Job:     handler.NewJobHandler(jobs, applications, descriptions, purge),
		Company: &handler.CompanyHandler{
			Profiles:      profiles,
			Users:         users,
			Jobs:          jobs,
			Applications:  applications,
			Notifications: repository.NewNotificationRepo(db),
			Purge:         purge,
		},
		Admin: &handler.AdminHandler{
			Users:      users,
			Jobs:       jobs,
			Feedback:   feedback,
			Moderation: moderation,
			Purge:      purge,
		},
		Feedback: &handler.FeedbackHandler{Feedback: service.NewFeedbackService(feedback, users, events)},
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     cacheCfg,
		Redis:     rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// newDispatcher picks the Gmail mailer and the Telegram reporter when they
// are configured and falls back to writing to the log.
func newDispatcher(ctx context.Context, cfg config.Config) *queue.Dispatcher {
	d := &queue.Dispatcher{Mailer: mail.LogSender{}, Reporter: reporter.LogReporter{}, FrontendURL: cfg.FrontendURL}

	if mc := config.LoadMailConfig(); mc.Enabled() {
		if s, err := mail.NewGmailSender(ctx, mc); err != nil {
			log.Printf("gmail disabled: %v", err)
		} else {
			d.Mailer = s
		}
	}
	if tc := config.LoadTelegramConfig(); tc.Enabled() {
		if r, err := reporter.NewTelegramReporter(tc); err != nil {
			log.Printf("telegram disabled: %v", err)
		} else {
			d.Reporter = r
		}
	}
	return d
}

// newGenerator returns the job description generator, or nil when no API
// key is configured.  The result is an interface so that a missing
// generator is a true nil.
func newGenerator(ctx context.Context) service.DescriptionGenerator {
	ac := config.LoadAIConfig()
	if ac.APIKey == "" {
		return nil
	}
	g, err := ai.New(ctx, ac)
	if err != nil {
		log.Printf("ai disabled: %v", err)
		return nil
	}
	return g
}
