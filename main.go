package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"usersvc/internal/config"
	"usersvc/internal/logging"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// --- Storage, events and routes ---
	app, err := NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	// --- Event consumer ---
	// Logs and acks every user event, so only enable it when no other
	// service reads the queue.
	if app.Events != nil && cfg.ConsumeEvents {
		err := app.Events.Consume(func(msg amqp.Delivery) error {
			logger.Info("Received user event",
				zap.String("type", msg.Type),
				zap.String("id", msg.MessageId),
				zap.ByteString("body", msg.Body))
			return nil
		})
		if err != nil {
			logger.Warn("Failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- Start HTTP Server ---
	logger.Info("Starting server", zap.String("port", cfg.AppPort), zap.String("store", cfg.DBDriver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		logger.Error("Error during Fiber shutdown", zap.Error(err))
	}
	if err := app.Close(); err != nil {
		logger.Error("Error releasing resources", zap.Error(err))
	}
	logger.Info("Server gracefully stopped")
}
