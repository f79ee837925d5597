package services

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridewise/ridewise-backend/internal/apperrors"
	"github.com/ridewise/ridewise-backend/internal/models"
)

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	booking, schedule, _, _ := env.seedBooking(t)

	assert.True(t, strings.HasPrefix(booking.PNR, "RW-"))
	assert.Equal(t, models.BookingActive, booking.Status)

	reloaded, err := env.store.GetSchedule(schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleBusy, reloaded.Status)
}

func TestCreateBookingListsBlankFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.bookings.Create(CreateBookingRequest{
		ScheduleID:  "SC123",
		PassengerID: " ",
		Date:        futureDate(1),
		Distance:    -1,
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	for _, field := range []string{"passenger_id", "driver_id", "location_from", "location_to", "time", "distance"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestCreateBookingDerivesFare(t *testing.T) {
	env := newTestEnv(t)
	driver := env.seedDriver(t, models.UserActive, true)
	passenger := env.seedPassenger(t)

	schedule, err := env.schedules.Create(CreateScheduleRequest{
		DriverID:        driver.DriverID,
		PickupLocation:  "Airport",
		DropoffLocation: "Downtown",
		Date:            futureDate(1),
		TimeFrom:        "09:00",
		TimeTo:          "10:00",
	})
	require.NoError(t, err)

	booking, err := env.bookings.Create(CreateBookingRequest{
		ScheduleID:   schedule.ScheduleID,
		PassengerID:  passenger.PassengerID,
		DriverID:     driver.DriverID,
		LocationFrom: "Airport",
		LocationTo:   "Downtown",
		Date:         schedule.Date,
		Time:         schedule.TimeFrom,
		Distance:     12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 250.0, booking.Price) // 12.5 km * 20/km
}

func TestCreateBookingScheduleRace(t *testing.T) {
	env := newTestEnv(t)
	_, schedule, driver, passenger := env.seedBooking(t)

	// The schedule is busy now; a second reservation must surface a
	// conflict, not a success.
	_, err := env.bookings.Create(CreateBookingRequest{
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
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestConcurrentBookingsOneWinner(t *testing.T) {
	env := newTestEnv(t)
	driver := env.seedDriver(t, models.UserActive, true)
	passenger := env.seedPassenger(t)

	schedule, err := env.schedules.Create(CreateScheduleRequest{
		DriverID:        driver.DriverID,
		PickupLocation:  "Airport",
		DropoffLocation: "Downtown",
		Date:            futureDate(1),
		TimeFrom:        "09:00",
		TimeTo:          "10:00",
	})
	require.NoError(t, err)

	req := CreateBookingRequest{
		ScheduleID:   schedule.ScheduleID,
		PassengerID:  passenger.PassengerID,
		DriverID:     driver.DriverID,
		LocationFrom: "Airport",
		LocationTo:   "Downtown",
		Date:         schedule.Date,
		Time:         schedule.TimeFrom,
		Distance:     12.5,
		Price:        250,
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.bookings.Create(req)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one of two concurrent claims may win")

	reloaded, err := env.store.GetSchedule(schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleBusy, reloaded.Status)

	details, err := env.bookings.ListByPassenger(passenger.PassengerID)
	require.NoError(t, err)
	assert.Len(t, details, 1)
}

func TestGetByPNRProjection(t *testing.T) {
	env := newTestEnv(t)
	booking, _, driver, passenger := env.seedBooking(t)

	detail, err := env.bookings.GetByPNR(booking.PNR)
	require.NoError(t, err)
	assert.Equal(t, driver.Name, detail.DriverName)
	assert.Equal(t, driver.VehicleNo, detail.VehicleNo)
	assert.Equal(t, passenger.Name, detail.PassengerName)
	assert.Equal(t, models.BookingActive, detail.Status)

	_, err = env.bookings.GetByPNR("RW-NOPE")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListByPassengerEmptyIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	passenger := env.seedPassenger(t)

	details, err := env.bookings.ListByPassenger(passenger.PassengerID)
	require.NoError(t, err)
	assert.Empty(t, details)

	_, err = env.bookings.ListByPassenger("PS-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancelBookingCascades(t *testing.T) {
	env := newTestEnv(t)
	booking, schedule, _, _ := env.seedBooking(t)

	cancelled, err := env.bookings.CancelByPNR(booking.PNR)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	reloaded, err := env.store.GetSchedule(schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleCancelled, reloaded.Status)

	// Already cancelled: rejected by the state guard.
	_, err = env.bookings.CancelByPNR(booking.PNR)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCancelBookingBySchedule(t *testing.T) {
	env := newTestEnv(t)
	booking, schedule, _, _ := env.seedBooking(t)

	cancelled, err := env.bookings.CancelBySchedule(schedule.ScheduleID)
	require.NoError(t, err)
	assert.Equal(t, booking.PNR, cancelled.PNR)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	env := newTestEnv(t)
	booking, schedule, _, _ := env.seedBooking(t)

	_, code, err := env.otp.Send(schedule.ScheduleID)
	require.NoError(t, err)
	_, err = env.otp.Verify(schedule.ScheduleID, code, booking.PNR)
	require.NoError(t, err)

	_, err = env.bookings.CancelByPNR(booking.PNR)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRateDriver(t *testing.T) {
	env := newTestEnv(t)
	booking, schedule, driver, _ := env.seedBooking(t)

	req := RateDriverRequest{
		VehicleNo:           driver.VehicleNo,
		PNR:                 booking.PNR,
		DriverBehavior:      5,
		DrivingSkill:        4,
		VehicleCleanliness:  4,
		Punctuality:         3,
		OverallSatisfaction: 4,
	}

	// Not completed yet.
	_, err := env.bookings.RateDriver(req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, code, err := env.otp.Send(schedule.ScheduleID)
	require.NoError(t, err)
	_, err = env.otp.Verify(schedule.ScheduleID, code, booking.PNR)
	require.NoError(t, err)

	rating, err := env.bookings.RateDriver(req)
	require.NoError(t, err)
	assert.Equal(t, 4.0, rating.Average)

	updated, err := env.store.GetDriverByID(driver.DriverID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, updated.Rating)
	assert.Equal(t, 1, updated.RatingCount)

	// Out-of-range dimension.
	req.Punctuality = 6
	_, err = env.bookings.RateDriver(req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
