package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ridewise/ridewise-backend/internal/config"
	"github.com/ridewise/ridewise-backend/internal/jobs"
	"github.com/ridewise/ridewise-backend/internal/models"
	"github.com/ridewise/ridewise-backend/internal/storage"
)

type testEnv struct {
	store     *storage.GormStore
	schedules *ScheduleService
	bookings  *BookingService
	otp       *OTPService
	cfg       *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection serializes concurrent transactions the way a real
	// server's row locks would; without it sqlite surfaces table-lock errors
	// instead of letting the second claim observe the busy status.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := storage.NewGormStore(db)
	require.NoError(t, store.Migrate())

	cfg := &config.Config{
		Environment:    "development",
		OTPTTL:         5 * time.Minute,
		OTPMaxAttempts: 5,
		FarePerKm:      20,
	}
	log := zap.NewNop()
	dispatcher := jobs.NewDispatcher(map[jobs.Channel]jobs.Sender{}, log)
	fare := NewFareCalculator(cfg.FarePerKm)

	return &testEnv{
		store:     store,
		schedules: NewScheduleService(store, log),
		bookings:  NewBookingService(store, dispatcher, fare, log),
		otp:       NewOTPService(store, dispatcher, cfg, log),
		cfg:       cfg,
	}
}

func (e *testEnv) seedDriver(t *testing.T, status models.UserStatus, available bool) *models.Driver {
	t.Helper()
	driver := &models.Driver{
		Name:        "Asha Verma",
		Email:       fmt.Sprintf("asha-%s@example.com", uuid.NewString()[:8]),
		Phone:       "+91-" + uuid.NewString()[:12],
		VehicleNo:   "KA01" + uuid.NewString()[:4],
		VehicleType: "sedan",
		Status:      status,
		IsAvailable: available,
	}
	require.NoError(t, e.store.CreateDriver(driver))
	return driver
}

func (e *testEnv) seedPassenger(t *testing.T) *models.Passenger {
	t.Helper()
	passenger := &models.Passenger{
		Name:  "Rahul Nair",
		Email: fmt.Sprintf("rahul-%s@example.com", uuid.NewString()[:8]),
		Phone: "+91-" + uuid.NewString()[:12],
	}
	require.NoError(t, e.store.CreatePassenger(passenger))
	return passenger
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func (e *testEnv) seedBooking(t *testing.T) (*models.Booking, *models.Schedule, *models.Driver, *models.Passenger) {
	t.Helper()
	driver := e.seedDriver(t, models.UserActive, true)
	passenger := e.seedPassenger(t)

	schedule, err := e.schedules.Create(CreateScheduleRequest{
		DriverID:        driver.DriverID,
		PickupLocation:  "Airport",
		DropoffLocation: "Downtown",
		Date:            futureDate(1),
		TimeFrom:        "09:00",
		TimeTo:          "10:00",
	})
	require.NoError(t, err)

	booking, err := e.bookings.Create(CreateBookingRequest{
		ScheduleID:   schedule.ScheduleID,
		PassengerID:  passenger.PassengerID,
		DriverID:     driver.DriverID,
		LocationFrom: "Airport",
		LocationTo:   "Downtown",
		Date:         schedule.Date,
		Time:         schedule.TimeFrom,
		Distance:     12.5,
		Price:        250,
	})
	require.NoError(t, err)
	return booking, schedule, driver, passenger
}
