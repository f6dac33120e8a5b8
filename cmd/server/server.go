package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/football-field-booking/internal/config"
	"github.com/iliyamo/football-field-booking/internal/database"
	"github.com/iliyamo/football-field-booking/internal/email"
	"github.com/iliyamo/football-field-booking/internal/handler"
	"github.com/iliyamo/football-field-booking/internal/metrics"
	"github.com/iliyamo/football-field-booking/internal/middleware"
	"github.com/iliyamo/football-field-booking/internal/queue"
	"github.com/iliyamo/football-field-booking/internal/repository"
	"github.com/iliyamo/football-field-booking/internal/router"
	"github.com/iliyamo/football-field-booking/internal/scheduler"
	"github.com/iliyamo/football-field-booking/internal/service"
	"github.com/iliyamo/football-field-booking/internal/utils"
)

// app holds the long lived components started by main.
type app struct {
	echo      *echo.Echo
	db        *sql.DB
	rdb       *redis.Client
	publisher *queue.Publisher
	consumer  *queue.Consumer
	scheduler *scheduler.Service
	closed    bool
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	metrics.Register()
	loc := cfg.Location()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, err
	}
	a := &app{db: db}
	if cfg.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			a.close()
			return nil, err
		}
	}

	users := repository.NewUserRepo(db)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		if err := users.EnsureAdmin(ctx, cfg.AdminEmail, hash); err != nil {
			a.close()
			return nil, fmt.Errorf("ensure admin: %w", err)
		}
		log.Info().Str("email", strings.ToLower(cfg.AdminEmail)).Msg("admin account ensured")
	}

	a.rdb = config.NewRedisClient()
	if a.rdb == nil {
		log.Warn().Msg("redis unavailable: response cache disabled, rate limiter in-process")
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), a.rdb)

	var events service.EventPublisher
	if cfg.EventsEnabled {
		a.publisher = queue.NewPublisher(cfg.RabbitURL)
		events = a.publisher
		a.consumer = queue.NewConsumer(cfg.RabbitURL, email.NewNotifier(newSender(ctx, cfg.Email)))
	}

	tx := repository.NewTxManager(db)
	fields := repository.NewFieldRepo(db)
	slots := repository.NewTimeSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	locks := repository.NewFieldLockRepo(db)
	opponents := repository.NewOpponentRepo(db)

	avail := service.NewAvailability(fields, slots, bookings, locks)
	bookingSvc := service.NewBookingService(tx, avail, bookings, opponents, events, loc, cfg.PhoneRegion)
	opponentSvc := service.NewOpponentService(tx, bookings, opponents, loc, cfg.PhoneRegion)

	a.scheduler, err = scheduler.New(loc)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterMaintenanceJobs(a.scheduler, opponentSvc, cfg.OpponentSweepCron, bookingSvc, cfg.BookingCompleteCron); err != nil {
		a.close()
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)),
		Fields:    handler.NewFieldHandler(service.NewCatalogService(fields, slots, cache, loc)),
		Bookings:  handler.NewBookingHandler(bookingSvc, avail),
		Locks:     handler.NewFieldManagementHandler(service.NewFieldLockService(tx, avail, slots, locks, loc), avail),
		Opponents: handler.NewOpponentHandler(opponentSvc),
		Feedback:  handler.NewFeedbackHandler(service.NewFeedbackService(repository.NewFeedbackRepo(db))),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepo(db), bookings, loc)),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.CORS())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), a.rdb))

	router.RegisterRoutes(e, db)
	router.Register(e, h, cfg.JWTSecret, cache.Middleware())
	a.echo = e
	return a, nil
}

// newSender returns an SES client when configured, else a log-only sender.
func newSender(ctx context.Context, cfg config.EmailConfig) email.Sender {
	if !cfg.SESEnabled() {
		log.Info().Msg("SES not configured: booking emails are logged only")
		return email.LogSender{}
	}
	ses, err := email.NewSESClient(ctx, cfg.SESAccessKeyID, cfg.SESSecretAccessKey, cfg.SESRegion, cfg.Sender)
	if err != nil {
		log.Warn().Err(err).Msg("SES client init failed: booking emails are logged only")
		return email.LogSender{}
	}
	return ses
}

func (a *app) close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("close publisher")
		}
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			log.Warn().Err(err).Msg("close database")
		}
	}
}
