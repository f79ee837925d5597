package storage

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ridewise/ridewise-backend/internal/apperrors"
	"github.com/ridewise/ridewise-backend/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := NewGormStore(db)
	require.NoError(t, store.Migrate())
	return store
}

func seedParties(t *testing.T, store *GormStore) (*models.Driver, *models.Passenger) {
	t.Helper()
	driver := &models.Driver{
		Name:        "Asha Verma",
		Email:       fmt.Sprintf("asha-%s@example.com", uuid.NewString()[:8]),
		Phone:       "+91" + uuid.NewString()[:10],
		VehicleNo:   "KA01" + uuid.NewString()[:4],
		VehicleType: "sedan",
		Status:      models.UserActive,
		IsAvailable: true,
	}
	require.NoError(t, store.CreateDriver(driver))

	passenger := &models.Passenger{
		Name:  "Rahul Nair",
		Email: fmt.Sprintf("rahul-%s@example.com", uuid.NewString()[:8]),
		Phone: "+91" + uuid.NewString()[:10],
	}
	require.NoError(t, store.CreatePassenger(passenger))
	return driver, passenger
}

func seedSchedule(t *testing.T, store *GormStore, driverID string) *models.Schedule {
	t.Helper()
	schedule := &models.Schedule{
		DriverID:        driverID,
		PickupLocation:  "Airport",
		DropoffLocation: "Downtown",
		Date:            "2030-06-01",
		TimeFrom:        "09:00",
		TimeTo:          "10:00",
		Status:          models.ScheduleActive,
	}
	require.NoError(t, store.CreateSchedule(schedule))
	return schedule
}

func TestClaimScheduleFlipsStatusOnce(t *testing.T) {
	store := newTestStore(t)
	driver, passenger := seedParties(t, store)
	schedule := seedSchedule(t, store, driver.DriverID)

	booking := &models.Booking{
		PNR:         "RW-TEST0001",
		ScheduleID:  schedule.ScheduleID,
		PassengerID: passenger.PassengerID,
		DriverID:    driver.DriverID,
		Distance:    12.5,
		Price:       250,
		Status:      models.BookingActive,
	}
	gotDriver, gotPassenger, err := store.ClaimSchedule(booking)
	require.NoError(t, err)
	assert.Equal(t, driver.DriverID, gotDriver.DriverID)
	assert.Equal(t, passenger.PassengerID, gotPassenger.PassengerID)

	reloaded, err := store.GetSchedule(schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleBusy, reloaded.Status)

	// A second claim against the same schedule must lose.
	second := &models.Booking{
		PNR:         "RW-TEST0002",
		ScheduleID:  schedule.ScheduleID,
		PassengerID: passenger.PassengerID,
		DriverID:    driver.DriverID,
		Status:      models.BookingActive,
	}
	_, _, err = store.ClaimSchedule(second)
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = store.GetBookingByPNR("RW-TEST0002")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "losing claim must not persist a booking")
}

func TestClaimScheduleRollsBackOnMissingPassenger(t *testing.T) {
	store := newTestStore(t)
	driver, _ := seedParties(t, store)
	schedule := seedSchedule(t, store, driver.DriverID)

	booking := &models.Booking{
		PNR:         "RW-TEST0003",
		ScheduleID:  schedule.ScheduleID,
		PassengerID: "PS-missing",
		DriverID:    driver.DriverID,
		Status:      models.BookingActive,
	}
	_, _, err := store.ClaimSchedule(booking)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	// The whole transaction rolled back: no booking row, schedule untouched.
	_, err = store.GetBookingByPNR("RW-TEST0003")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	reloaded, err := store.GetSchedule(schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleActive, reloaded.Status)
}

func TestFindOverlappingSchedules(t *testing.T) {
	store := newTestStore(t)
	driver, _ := seedParties(t, store)
	seedSchedule(t, store, driver.DriverID) // 09:00-10:00

	overlapping, err := store.FindOverlappingSchedules(driver.DriverID, "2030-06-01", "09:30", "10:30")
	require.NoError(t, err)
	assert.Len(t, overlapping, 1)

	// Touching windows do not intersect under [from,to).
	overlapping, err = store.FindOverlappingSchedules(driver.DriverID, "2030-06-01", "10:00", "11:00")
	require.NoError(t, err)
	assert.Empty(t, overlapping)

	// Other dates and other drivers never conflict.
	overlapping, err = store.FindOverlappingSchedules(driver.DriverID, "2030-06-02", "09:00", "10:00")
	require.NoError(t, err)
	assert.Empty(t, overlapping)
}

func TestIncrementOTPAttemptsIsCumulative(t *testing.T) {
	store := newTestStore(t)
	driver, passenger := seedParties(t, store)
	schedule := seedSchedule(t, store, driver.DriverID)

	booking := &models.Booking{
		PNR:         "RW-TEST0004",
		ScheduleID:  schedule.ScheduleID,
		PassengerID: passenger.PassengerID,
		DriverID:    driver.DriverID,
		Status:      models.BookingActive,
	}
	_, _, err := store.ClaimSchedule(booking)
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		got, err := store.IncrementOTPAttempts(booking.PNR)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = store.IncrementOTPAttempts("RW-NOPE")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetBookingsByPassengerNewestFirst(t *testing.T) {
	store := newTestStore(t)
	driver, passenger := seedParties(t, store)

	for i := 0; i < 3; i++ {
		schedule := &models.Schedule{
			DriverID: driver.DriverID,
			Date:     "2030-06-01",
			TimeFrom: fmt.Sprintf("%02d:00", 9+i),
			TimeTo:   fmt.Sprintf("%02d:00", 10+i),
			Status:   models.ScheduleActive,
		}
		require.NoError(t, store.CreateSchedule(schedule))

		booking := &models.Booking{
			PNR:         fmt.Sprintf("RW-LIST%04d", i),
			ScheduleID:  schedule.ScheduleID,
			PassengerID: passenger.PassengerID,
			DriverID:    driver.DriverID,
			Status:      models.BookingActive,
		}
		_, _, err := store.ClaimSchedule(booking)
		require.NoError(t, err)
	}

	details, err := store.GetBookingsByPassenger(passenger.PassengerID)
	require.NoError(t, err)
	require.Len(t, details, 3)
	for _, d := range details {
		assert.Equal(t, driver.Name, d.DriverName)
		assert.Equal(t, driver.VehicleNo, d.VehicleNo)
	}
}
