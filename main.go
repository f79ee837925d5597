package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ridewise/ridewise-backend/database"
	"github.com/ridewise/ridewise-backend/internal/config"
	"github.com/ridewise/ridewise-backend/internal/jobs"
	"github.com/ridewise/ridewise-backend/internal/logger"
	"github.com/ridewise/ridewise-backend/internal/routes"
	"github.com/ridewise/ridewise-backend/internal/services"
	"github.com/ridewise/ridewise-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("connecting to PostgreSQL")
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	store := newMigratedStore(db, log)

	// Notification transports are optional; a missing configuration only
	// disables that channel, never the API.
	senders := map[jobs.Channel]jobs.Sender{}
	if mailer, err := services.NewMailer(cfg); err != nil {
		log.Warn("email channel disabled", zap.Error(err))
	} else {
		senders[jobs.ChannelEmail] = mailer
	}
	if sms, err := services.NewSMSSender(); err != nil {
		log.Warn("sms channel disabled", zap.Error(err))
	} else {
		senders[jobs.ChannelSMS] = sms
	}

	dispatcher := jobs.NewDispatcher(senders, log)
	dispatcher.Start()

	app := fiber.New(fiber.Config{
		AppName: "RideWise Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, db, store, dispatcher, cfg, log)

	// Graceful shutdown: stop taking requests, then stop the dispatcher.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("shutting down")
		_ = app.Shutdown()
		dispatcher.Stop()
	}()

	log.Info("RideWise backend starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newMigratedStore(db *gorm.DB, log *zap.Logger) storage.Store {
	store := storage.NewGormStore(db)
	log.Info("running database migrations")
	if err := store.Migrate(); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	return store
}
