package storage

import (
	"github.com/ridewise/ridewise-backend/internal/models"
)

// Store defines the interface for storage operations.
type Store interface {
	// Driver operations
	CreateDriver(driver *models.Driver) error
	GetDriverByID(driverID string) (*models.Driver, error)
	GetDriverByVehicleNo(vehicleNo string) (*models.Driver, error)
	UpdateDriver(driver *models.Driver) error

	// Passenger operations
	CreatePassenger(passenger *models.Passenger) error
	GetPassengerByID(passengerID string) (*models.Passenger, error)

	// Schedule operations
	CreateSchedule(schedule *models.Schedule) error
	GetSchedule(scheduleID string) (*models.Schedule, error)
	GetSchedulesByDriver(driverID string) ([]*models.Schedule, error)
	GetAvailableSchedules(date string) ([]*models.Schedule, error)
	FindOverlappingSchedules(driverID, date, timeFrom, timeTo string) ([]*models.Schedule, error)
	UpdateSchedule(schedule *models.Schedule) error

	// Booking operations. ClaimSchedule runs the whole reservation in one
	// transaction: insert the booking, flip the schedule active->busy with a
	// conditional update, verify driver and passenger exist. Either all of
	// it commits or none of it does. It returns the driver and passenger
	// loaded inside the transaction so the caller can notify both parties.
	ClaimSchedule(booking *models.Booking) (*models.Driver, *models.Passenger, error)
	GetBookingByPNR(pnr string) (*models.Booking, error)
	GetActiveBookingBySchedule(scheduleID string) (*models.Booking, error)
	GetBookingDetail(pnr string) (*models.BookingDetail, error)
	GetBookingsByPassenger(passengerID string) ([]*models.BookingDetail, error)
	UpdateBooking(booking *models.Booking) error

	// OTP operations. IncrementOTPAttempts is a single SQL increment so the
	// attempt cap holds under concurrent verification calls; it returns the
	// post-increment count.
	IncrementOTPAttempts(pnr string) (int, error)
	CompleteRide(booking *models.Booking, schedule *models.Schedule) error
	CancelRide(booking *models.Booking, schedule *models.Schedule) error

	// Rating operations: insert the rating and update the driver aggregate
	// in one transaction.
	CreateRating(rating *models.Rating, driver *models.Driver) error
}
