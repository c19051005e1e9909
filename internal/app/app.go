package app

import (
	"context"

	"resorthub/config"
	"resorthub/internal/controllers"
	"resorthub/internal/database"
	"resorthub/internal/events"
	"resorthub/internal/handlers/middleware"
	"resorthub/internal/jobs"
	"resorthub/internal/logger"
	"resorthub/internal/repositories"
	"resorthub/internal/services"
	"resorthub/internal/websockets"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)
	repos := repositories.New(db)

	services, err := services.New(db, config, eventBus, repos)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	websocket, err := websockets.New(services.Session, eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	controllers := controllers.New(services, repos, config, db)

	if err := jobs.RegisterAllJobs(services.Scheduler, config, controllers.Reservation); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:    db,
		Middleware:  middleware.New(services.Session, services.Metrics),
		Websocket:   websocket,
		EventBus:    eventBus,
		Config:      config,
		Services:    services,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

// Start launches background work that outlives a single request.
func (a *App) Start(ctx context.Context) error {
	if !a.Config.SchedulerEnabled {
		return nil
	}
	return a.Services.Scheduler.Start(ctx)
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := map[string]any{
		"websocket":              a.Websocket,
		"eventBus":               a.EventBus,
		"transactionService":     a.Services.Transaction,
		"sessionService":         a.Services.Session,
		"schedulerService":       a.Services.Scheduler,
		"imageStore":             a.Services.Images,
		"notificationService":    a.Services.Notification,
		"authController":         a.Controllers.Auth,
		"reservationController":  a.Controllers.Reservation,
		"messagingController":    a.Controllers.Messaging,
		"notificationController": a.Controllers.Notification,
		"listingController":      a.Controllers.Listing,
		"adminController":        a.Controllers.Admin,
	}

	for name, check := range nilChecks {
		if isNil(check) {
			return log.ErrMsg("nil check failed: " + name)
		}
	}

	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch typed := v.(type) {
	case *websockets.Manager:
		return typed == nil
	case *events.EventBus:
		return typed == nil
	case *services.TransactionService:
		return typed == nil
	case *services.SessionService:
		return typed == nil
	case *services.SchedulerService:
		return typed == nil
	case *services.NotificationService:
		return typed == nil
	}
	return false
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
