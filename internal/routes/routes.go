package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ridewise/ridewise-backend/internal/config"
	"github.com/ridewise/ridewise-backend/internal/handlers"
	"github.com/ridewise/ridewise-backend/internal/jobs"
	"github.com/ridewise/ridewise-backend/internal/middleware"
	"github.com/ridewise/ridewise-backend/internal/services"
	"github.com/ridewise/ridewise-backend/internal/storage"
)

// SetupRoutes wires services and handlers onto the fiber app.
func SetupRoutes(app *fiber.App, db *gorm.DB, store storage.Store, dispatcher *jobs.Dispatcher, cfg *config.Config, log *zap.Logger) {
	dev := cfg.IsDevelopment()

	fare := services.NewFareCalculator(cfg.FarePerKm)
	scheduleSvc := services.NewScheduleService(store, log)
	bookingSvc := services.NewBookingService(store, dispatcher, fare, log)
	otpSvc := services.NewOTPService(store, dispatcher, cfg, log)

	scheduleHandler := handlers.NewScheduleHandler(scheduleSvc, bookingSvc, otpSvc, log, dev)
	bookingHandler := handlers.NewBookingHandler(bookingSvc, log, dev)
	userHandler := handlers.NewUserHandler(store, log, dev)

	app.Get("/health", handlers.Health(db))

	api := app.Group("/api")

	// Development runs open; production requires a bearer token issued by
	// the auth service.
	if !dev {
		api.Use(middleware.RequireAuth(cfg.JWTSecret))
	}

	schedules := api.Group("/schedules")
	schedules.Post("/", scheduleHandler.Create)
	schedules.Get("/", scheduleHandler.ListAvailable)
	schedules.Get("/driver/:driverID", scheduleHandler.ListByDriver)
	schedules.Put("/:scheduleID/cancel", scheduleHandler.Cancel)
	schedules.Put("/:scheduleID/cancel-booking", scheduleHandler.CancelBooking)
	schedules.Post("/:scheduleID/send-otp", scheduleHandler.SendOTP)
	schedules.Post("/:scheduleID/verify-otp", scheduleHandler.VerifyOTP)

	booking := api.Group("/booking")
	booking.Post("/create", bookingHandler.Create)
	booking.Get("/pnr/:pnr", bookingHandler.GetByPNR)
	booking.Get("/passenger/:passengerID", bookingHandler.ListByPassenger)
	booking.Put("/:pnr/cancel", bookingHandler.Cancel)
	booking.Post("/rate", bookingHandler.Rate)

	drivers := api.Group("/drivers")
	drivers.Post("/register", userHandler.RegisterDriver)
	drivers.Get("/:driverID", userHandler.GetDriver)
	drivers.Put("/:driverID/availability", userHandler.SetDriverAvailability)

	passengers := api.Group("/passengers")
	passengers.Post("/register", userHandler.RegisterPassenger)
	passengers.Get("/:passengerID", userHandler.GetPassenger)
}
