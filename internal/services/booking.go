package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ridewise/ridewise-backend/internal/apperrors"
	"github.com/ridewise/ridewise-backend/internal/jobs"
	"github.com/ridewise/ridewise-backend/internal/models"
	"github.com/ridewise/ridewise-backend/internal/storage"
	"github.com/ridewise/ridewise-backend/internal/utils"
)

// BookingService owns the reservation lifecycle: the atomic schedule claim,
// read projections, cancellation cascade and post-ride rating.
type BookingService struct {
	store      storage.Store
	dispatcher *jobs.Dispatcher
	fare       *FareCalculator
	log        *zap.Logger
}

func NewBookingService(store storage.Store, dispatcher *jobs.Dispatcher, fare *FareCalculator, log *zap.Logger) *BookingService {
	return &BookingService{store: store, dispatcher: dispatcher, fare: fare, log: log}
}

// CreateBookingRequest carries the nine fields a booking needs. Price may be
// omitted, in which case the static per-km fare fills it in.
type CreateBookingRequest struct {
	ScheduleID   string  `json:"schedule_id" validate:"required"`
	PassengerID  string  `json:"passenger_id" validate:"required"`
	DriverID     string  `json:"driver_id" validate:"required"`
	LocationFrom string  `json:"location_from" validate:"required"`
	LocationTo   string  `json:"location_to" validate:"required"`
	Date         string  `json:"date" validate:"required"`
	Time         string  `json:"time" validate:"required"`
	Distance     float64 `json:"distance" validate:"required,gt=0"`
	Price        float64 `json:"price"`
}

// Create reserves a schedule into a booking. Validation happens before any
// write; the claim itself (booking insert, schedule active->busy flip,
// driver/passenger existence) is one transaction in the store. Confirmation
// notifications go out after commit and never affect the result.
func (s *BookingService) Create(req CreateBookingRequest) (*models.Booking, error) {
	req.ScheduleID = strings.TrimSpace(req.ScheduleID)
	req.PassengerID = strings.TrimSpace(req.PassengerID)
	req.DriverID = strings.TrimSpace(req.DriverID)
	req.LocationFrom = strings.TrimSpace(req.LocationFrom)
	req.LocationTo = strings.TrimSpace(req.LocationTo)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)

	var missing []string
	for field, value := range map[string]string{
		"schedule_id":   req.ScheduleID,
		"passenger_id":  req.PassengerID,
		"driver_id":     req.DriverID,
		"location_from": req.LocationFrom,
		"location_to":   req.LocationTo,
		"date":          req.Date,
		"time":          req.Time,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if req.Distance <= 0 {
		missing = append(missing, "distance")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing or blank fields: %s",
			apperrors.ErrValidation, strings.Join(missing, ", "))
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", apperrors.ErrValidation)
	}
	if req.Price == 0 {
		req.Price = s.fare.Price(req.Distance)
	}

	booking := &models.Booking{
		PNR:          utils.GeneratePNR(),
		ScheduleID:   req.ScheduleID,
		PassengerID:  req.PassengerID,
		DriverID:     req.DriverID,
		LocationFrom: req.LocationFrom,
		LocationTo:   req.LocationTo,
		Date:         req.Date,
		Time:         req.Time,
		Distance:     req.Distance,
		Price:        req.Price,
		Status:       models.BookingActive,
	}

	driver, passenger, err := s.store.ClaimSchedule(booking)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking confirmed",
		zap.String("pnr", booking.PNR),
		zap.String("schedule_id", booking.ScheduleID),
		zap.String("passenger_id", booking.PassengerID),
		zap.String("driver_id", booking.DriverID))

	s.notifyConfirmation(booking, driver, passenger)
	return booking, nil
}

// notifyConfirmation enqueues best-effort confirmations to both parties
// independently. The booking is final; nothing here can undo it.
func (s *BookingService) notifyConfirmation(b *models.Booking, driver *models.Driver, passenger *models.Passenger) {
	s.dispatcher.Enqueue(jobs.Message{
		Channel: jobs.ChannelEmail,
		To:      passenger.Email,
		Subject: fmt.Sprintf("RideWise booking %s confirmed", b.PNR),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour ride is confirmed.\n\nPNR: %s\nFrom: %s\nTo: %s\nDate: %s %s\nDriver: %s (%s)\nFare: %.2f\n",
			passenger.Name, b.PNR, b.LocationFrom, b.LocationTo, b.Date, b.Time, driver.Name, driver.VehicleNo, b.Price),
	})
	s.dispatcher.Enqueue(jobs.Message{
		Channel: jobs.ChannelEmail,
		To:      driver.Email,
		Subject: fmt.Sprintf("New RideWise booking %s", b.PNR),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYou have a new booking.\n\nPNR: %s\nPassenger: %s\nFrom: %s\nTo: %s\nDate: %s %s\n",
			driver.Name, b.PNR, passenger.Name, b.LocationFrom, b.LocationTo, b.Date, b.Time),
	})
	if passenger.Phone != "" {
		s.dispatcher.Enqueue(jobs.Message{
			Channel: jobs.ChannelSMS,
			To:      passenger.Phone,
			Body: fmt.Sprintf("RideWise: booking %s confirmed for %s %s, %s -> %s.",
				b.PNR, b.Date, b.Time, b.LocationFrom, b.LocationTo),
		})
	}
}

// GetByPNR returns the booking joined with driver and passenger display
// fields.
func (s *BookingService) GetByPNR(pnr string) (*models.BookingDetail, error) {
	return s.store.GetBookingDetail(strings.TrimSpace(pnr))
}

// ListByPassenger returns the passenger's bookings, newest first. An empty
// list is a valid result.
func (s *BookingService) ListByPassenger(passengerID string) ([]*models.BookingDetail, error) {
	if _, err := s.store.GetPassengerByID(passengerID); err != nil {
		return nil, err
	}
	return s.store.GetBookingsByPassenger(passengerID)
}

// CancelByPNR cancels a live booking and cascades the linked schedule to
// cancelled in the same transaction. Terminal bookings are rejected.
func (s *BookingService) CancelByPNR(pnr string) (*models.Booking, error) {
	booking, err := s.store.GetBookingByPNR(strings.TrimSpace(pnr))
	if err != nil {
		return nil, err
	}
	return s.cancel(booking)
}

// CancelBySchedule cancels via the schedule side (driver-initiated): it
// resolves the live booking for the schedule and runs the same cascade.
func (s *BookingService) CancelBySchedule(scheduleID string) (*models.Booking, error) {
	booking, err := s.store.GetActiveBookingBySchedule(strings.TrimSpace(scheduleID))
	if err != nil {
		return nil, err
	}
	return s.cancel(booking)
}

func (s *BookingService) cancel(booking *models.Booking) (*models.Booking, error) {
	if booking.Status != models.BookingActive {
		return nil, fmt.Errorf("%w: booking %s is already %s",
			apperrors.ErrConflict, booking.PNR, booking.Status)
	}

	schedule, err := s.store.GetSchedule(booking.ScheduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := booking.TransitionTo(models.BookingCancelled, now); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, err)
	}
	if err := schedule.TransitionTo(models.ScheduleCancelled, now); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, err)
	}

	if err := s.store.CancelRide(booking, schedule); err != nil {
		return nil, err
	}

	s.log.Info("booking cancelled",
		zap.String("pnr", booking.PNR),
		zap.String("schedule_id", booking.ScheduleID))
	return booking, nil
}

// RateDriverRequest carries the five 1-5 dimensions a passenger submits for
// a completed ride.
type RateDriverRequest struct {
	VehicleNo           string `json:"vehicle_no" validate:"required"`
	PNR                 string `json:"pnr" validate:"required"`
	DriverBehavior      int    `json:"driver_behavior" validate:"required,min=1,max=5"`
	DrivingSkill        int    `json:"driving_skill" validate:"required,min=1,max=5"`
	VehicleCleanliness  int    `json:"vehicle_cleanliness" validate:"required,min=1,max=5"`
	Punctuality         int    `json:"punctuality" validate:"required,min=1,max=5"`
	OverallSatisfaction int    `json:"overall_satisfaction" validate:"required,min=1,max=5"`
}

// RateDriver records the rating for a completed booking and folds the trip
// average into the driver's aggregate (running average over rating count).
func (s *BookingService) RateDriver(req RateDriverRequest) (*models.Rating, error) {
	for name, v := range map[string]int{
		"driver_behavior":      req.DriverBehavior,
		"driving_skill":        req.DrivingSkill,
		"vehicle_cleanliness":  req.VehicleCleanliness,
		"punctuality":          req.Punctuality,
		"overall_satisfaction": req.OverallSatisfaction,
	} {
		if v < 1 || v > 5 {
			return nil, fmt.Errorf("%w: %s must be between 1 and 5", apperrors.ErrValidation, name)
		}
	}

	booking, err := s.store.GetBookingByPNR(strings.TrimSpace(req.PNR))
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingCompleted {
		return nil, fmt.Errorf("%w: booking %s is not completed", apperrors.ErrConflict, booking.PNR)
	}

	vehicleNo := strings.ToUpper(strings.ReplaceAll(req.VehicleNo, " ", ""))
	driver, err := s.store.GetDriverByVehicleNo(vehicleNo)
	if err != nil {
		return nil, err
	}
	if driver.DriverID != booking.DriverID {
		return nil, fmt.Errorf("%w: vehicle %s did not serve booking %s",
			apperrors.ErrValidation, vehicleNo, booking.PNR)
	}

	rating := &models.Rating{
		PNR:                 booking.PNR,
		DriverID:            driver.DriverID,
		VehicleNo:           vehicleNo,
		DriverBehavior:      req.DriverBehavior,
		DrivingSkill:        req.DrivingSkill,
		VehicleCleanliness:  req.VehicleCleanliness,
		Punctuality:         req.Punctuality,
		OverallSatisfaction: req.OverallSatisfaction,
	}
	rating.ComputeAverage()
	driver.FoldRating(rating.Average)

	if err := s.store.CreateRating(rating, driver); err != nil {
		return nil, err
	}

	s.log.Info("driver rated",
		zap.String("pnr", rating.PNR),
		zap.String("driver_id", driver.DriverID),
		zap.Float64("trip_average", rating.Average),
		zap.Float64("driver_rating", driver.Rating))
	return rating, nil
}
