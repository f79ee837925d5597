package storage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ridewise/ridewise-backend/internal/apperrors"
	"github.com/ridewise/ridewise-backend/internal/models"
)

// GormStore implements Store over a *gorm.DB (Postgres in production,
// SQLite in tests).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema for every model the store owns.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.Driver{},
		&models.Passenger{},
		&models.Schedule{},
		&models.Booking{},
		&models.Rating{},
	)
}

// Driver operations

func (s *GormStore) CreateDriver(driver *models.Driver) error {
	return s.db.Create(driver).Error
}

func (s *GormStore) GetDriverByID(driverID string) (*models.Driver, error) {
	var driver models.Driver
	if err := s.db.Where("driver_id = ?", driverID).First(&driver).Error; err != nil {
		return nil, wrapNotFound(err, "driver %s", driverID)
	}
	return &driver, nil
}

func (s *GormStore) GetDriverByVehicleNo(vehicleNo string) (*models.Driver, error) {
	var driver models.Driver
	if err := s.db.Where("vehicle_no = ?", vehicleNo).First(&driver).Error; err != nil {
		return nil, wrapNotFound(err, "vehicle %s", vehicleNo)
	}
	return &driver, nil
}

func (s *GormStore) UpdateDriver(driver *models.Driver) error {
	return s.db.Save(driver).Error
}

// Passenger operations

func (s *GormStore) CreatePassenger(passenger *models.Passenger) error {
	return s.db.Create(passenger).Error
}

func (s *GormStore) GetPassengerByID(passengerID string) (*models.Passenger, error) {
	var passenger models.Passenger
	if err := s.db.Where("passenger_id = ?", passengerID).First(&passenger).Error; err != nil {
		return nil, wrapNotFound(err, "passenger %s", passengerID)
	}
	return &passenger, nil
}

// Schedule operations

func (s *GormStore) CreateSchedule(schedule *models.Schedule) error {
	return s.db.Create(schedule).Error
}

func (s *GormStore) GetSchedule(scheduleID string) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := s.db.Where("schedule_id = ?", scheduleID).First(&schedule).Error; err != nil {
		return nil, wrapNotFound(err, "schedule %s", scheduleID)
	}
	return &schedule, nil
}

func (s *GormStore) GetSchedulesByDriver(driverID string) ([]*models.Schedule, error) {
	var schedules []*models.Schedule
	err := s.db.Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&schedules).Error
	return schedules, err
}

func (s *GormStore) GetAvailableSchedules(date string) ([]*models.Schedule, error) {
	q := s.db.Where("status = ?", models.ScheduleActive)
	if date != "" {
		q = q.Where("date = ?", date)
	}
	var schedules []*models.Schedule
	err := q.Order("date ASC, time_from ASC").Find(&schedules).Error
	return schedules, err
}

// FindOverlappingSchedules returns the driver's active schedules on the date
// whose [time_from,time_to) window intersects the candidate interval. Times
// are zero-padded "15:04" strings, so lexical comparison in SQL is correct.
func (s *GormStore) FindOverlappingSchedules(driverID, date, timeFrom, timeTo string) ([]*models.Schedule, error) {
	var schedules []*models.Schedule
	err := s.db.
		Where("driver_id = ? AND date = ? AND status = ?", driverID, date, models.ScheduleActive).
		Where(
			"(time_from <= ? AND ? < time_to) OR (time_from < ? AND ? <= time_to) OR (? <= time_from AND time_to <= ?)",
			timeFrom, timeFrom, timeTo, timeTo, timeFrom, timeTo,
		).
		Find(&schedules).Error
	return schedules, err
}

func (s *GormStore) UpdateSchedule(schedule *models.Schedule) error {
	return s.db.Save(schedule).Error
}

// Booking operations

// ClaimSchedule reserves a schedule into a booking atomically. The
// conditional active->busy update is the only concurrency control: of two
// simultaneous claims, exactly one sees RowsAffected == 1 and commits; the
// other rolls back with a conflict.
func (s *GormStore) ClaimSchedule(booking *models.Booking) (*models.Driver, *models.Passenger, error) {
	var driver models.Driver
	var passenger models.Passenger

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		res := tx.Model(&models.Schedule{}).
			Where("schedule_id = ? AND status = ?", booking.ScheduleID, models.ScheduleActive).
			Update("status", models.ScheduleBusy)
		if res.Error != nil {
			return fmt.Errorf("claim schedule: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: schedule %s is not open for booking", apperrors.ErrConflict, booking.ScheduleID)
		}

		if err := tx.Where("driver_id = ?", booking.DriverID).First(&driver).Error; err != nil {
			return wrapNotFound(err, "driver %s", booking.DriverID)
		}
		if err := tx.Where("passenger_id = ?", booking.PassengerID).First(&passenger).Error; err != nil {
			return wrapNotFound(err, "passenger %s", booking.PassengerID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &driver, &passenger, nil
}

func (s *GormStore) GetBookingByPNR(pnr string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.Where("pnr = ?", pnr).First(&booking).Error; err != nil {
		return nil, wrapNotFound(err, "booking %s", pnr)
	}
	return &booking, nil
}

func (s *GormStore) GetActiveBookingBySchedule(scheduleID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Where("schedule_id = ? AND status = ?", scheduleID, models.BookingActive).
		First(&booking).Error
	if err != nil {
		return nil, wrapNotFound(err, "active booking for schedule %s", scheduleID)
	}
	return &booking, nil
}

func (s *GormStore) GetBookingDetail(pnr string) (*models.BookingDetail, error) {
	booking, err := s.GetBookingByPNR(pnr)
	if err != nil {
		return nil, err
	}
	return s.attachParties(booking)
}

func (s *GormStore) GetBookingsByPassenger(passengerID string) ([]*models.BookingDetail, error) {
	var bookings []*models.Booking
	err := s.db.Where("passenger_id = ?", passengerID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	details := make([]*models.BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		d, err := s.attachParties(b)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *GormStore) attachParties(booking *models.Booking) (*models.BookingDetail, error) {
	detail := &models.BookingDetail{Booking: *booking}

	var driver models.Driver
	if err := s.db.Where("driver_id = ?", booking.DriverID).First(&driver).Error; err == nil {
		detail.DriverName = driver.Name
		detail.DriverPhone = driver.Phone
		detail.VehicleNo = driver.VehicleNo
		detail.DriverRating = driver.Rating
	}

	var passenger models.Passenger
	if err := s.db.Where("passenger_id = ?", booking.PassengerID).First(&passenger).Error; err == nil {
		detail.PassengerName = passenger.Name
		detail.PassengerPhone = passenger.Phone
	}
	return detail, nil
}

func (s *GormStore) UpdateBooking(booking *models.Booking) error {
	return s.db.Save(booking).Error
}

// OTP operations

func (s *GormStore) IncrementOTPAttempts(pnr string) (int, error) {
	var attempts int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("pnr = ?", pnr).
			Update("otp_attempts", gorm.Expr("otp_attempts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: booking %s", apperrors.ErrNotFound, pnr)
		}

		var booking models.Booking
		if err := tx.Where("pnr = ?", pnr).First(&booking).Error; err != nil {
			return err
		}
		attempts = booking.OTPAttempts
		return nil
	})
	return attempts, err
}

// CompleteRide persists a verified OTP handshake: booking and schedule both
// move to completed, the OTP fields are wiped, the driver's trip counter is
// bumped. One transaction.
func (s *GormStore) CompleteRide(booking *models.Booking, schedule *models.Schedule) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Booking{}).
			Where("pnr = ?", booking.PNR).
			Updates(map[string]interface{}{
				"status":         booking.Status,
				"completed_at":   booking.CompletedAt,
				"otp":            "",
				"otp_expires_at": nil,
				"otp_attempts":   0,
			}).Error
		if err != nil {
			return err
		}

		err = tx.Model(&models.Schedule{}).
			Where("schedule_id = ?", schedule.ScheduleID).
			Updates(map[string]interface{}{
				"status":       schedule.Status,
				"completed_at": schedule.CompletedAt,
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Driver{}).
			Where("driver_id = ?", booking.DriverID).
			Update("total_trips", gorm.Expr("total_trips + 1")).Error
	})
}

// CancelRide persists a cancellation cascade: booking and schedule both move
// to cancelled in one transaction.
func (s *GormStore) CancelRide(booking *models.Booking, schedule *models.Schedule) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Booking{}).
			Where("pnr = ?", booking.PNR).
			Updates(map[string]interface{}{
				"status":       booking.Status,
				"cancelled_at": booking.CancelledAt,
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&models.Schedule{}).
			Where("schedule_id = ?", schedule.ScheduleID).
			Updates(map[string]interface{}{
				"status":       schedule.Status,
				"cancelled_at": schedule.CancelledAt,
			}).Error
	})
}

// Rating operations

func (s *GormStore) CreateRating(rating *models.Rating, driver *models.Driver) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			return err
		}
		return tx.Model(&models.Driver{}).
			Where("driver_id = ?", driver.DriverID).
			Updates(map[string]interface{}{
				"rating":       driver.Rating,
				"rating_count": driver.RatingCount,
			}).Error
	})
}

func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
