package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"usersvc/internal/config"
	"usersvc/internal/database"
	"usersvc/internal/handlers"
	"usersvc/internal/middleware"
	"usersvc/internal/repositories"
	"usersvc/internal/security"
	"usersvc/internal/services"
	"usersvc/internal/validation"
	"usersvc/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// App is the wired server with the resources it must release on shutdown.
type App struct {
	Fiber  *fiber.App
	Events *rabbitmq.Client
	logger *zap.Logger
	closer []func() error
}

// NewApp opens storage and the event broker named by cfg and wires the HTTP routes.
func NewApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{logger: log}

	repo, err := a.openRepository(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Events = client
		a.closer = append(a.closer, client.Close)
		publisher = client
	} else {
		log.Info("RABBITMQ_URL is empty, domain events are disabled")
	}

	validator := validation.New()
	hasher := security.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	userService := services.NewUserService(repo, validator, hasher, publisher, log, cfg.RequestTimeout)
	orderService := services.NewOrderService(repo, validator, publisher, log, cfg.RequestTimeout)

	userHandler := handlers.NewUserHandler(userService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Hello, world!"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  cfg.DBDriver,
			"events": a.Events != nil,
		})
	})

	api := app.Group("/api")
	userHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)

	a.Fiber = app
	return a, nil
}

func (a *App) openRepository(ctx context.Context, cfg config.Config) (repositories.UserRepository, error) {
	switch cfg.DBDriver {
	case database.DriverMemory:
		return repositories.NewMemoryUserRepository(), nil
	case database.DriverMongo:
		db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		a.closer = append(a.closer, func() error { return database.CloseMongo(db) })
		repo := repositories.NewMongoUserRepository(db, a.logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case database.DriverPostgres, database.DriverSQLite:
		db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.closer = append(a.closer, func() error { return database.Close(db) })
		return repositories.NewGORMUserRepository(db, a.logger), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Close releases storage and broker connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closer = nil
	return errors.Join(errs...)
}
