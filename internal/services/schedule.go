package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ridewise/ridewise-backend/internal/apperrors"
	"github.com/ridewise/ridewise-backend/internal/models"
	"github.com/ridewise/ridewise-backend/internal/storage"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ScheduleService owns the schedule lifecycle: publishing availability
// windows with non-overlap enforcement, listing inventory, cancelling.
type ScheduleService struct {
	store storage.Store
	log   *zap.Logger
}

func NewScheduleService(store storage.Store, log *zap.Logger) *ScheduleService {
	return &ScheduleService{store: store, log: log}
}

// CreateScheduleRequest carries the fields a driver submits when publishing
// a window.
type CreateScheduleRequest struct {
	DriverID        string `json:"driver_id" validate:"required"`
	PickupLocation  string `json:"pickup_location" validate:"required"`
	DropoffLocation string `json:"dropoff_location" validate:"required"`
	Date            string `json:"date" validate:"required"`
	TimeFrom        string `json:"time_from" validate:"required"`
	TimeTo          string `json:"time_to" validate:"required"`
}

// Create validates and publishes a schedule. Rejections, in order: blank
// fields (listed), malformed date/time, past date, ineligible driver,
// overlapping window.
func (s *ScheduleService) Create(req CreateScheduleRequest) (*models.Schedule, error) {
	req.DriverID = strings.TrimSpace(req.DriverID)
	req.PickupLocation = strings.TrimSpace(req.PickupLocation)
	req.DropoffLocation = strings.TrimSpace(req.DropoffLocation)
	req.Date = strings.TrimSpace(req.Date)
	req.TimeFrom = strings.TrimSpace(req.TimeFrom)
	req.TimeTo = strings.TrimSpace(req.TimeTo)

	var missing []string
	for field, value := range map[string]string{
		"driver_id":        req.DriverID,
		"pickup_location":  req.PickupLocation,
		"dropoff_location": req.DropoffLocation,
		"date":             req.Date,
		"time_from":        req.TimeFrom,
		"time_to":          req.TimeTo,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing or blank fields: %s",
			apperrors.ErrValidation, strings.Join(missing, ", "))
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be %s", apperrors.ErrValidation, dateLayout)
	}
	if _, err := time.Parse(timeLayout, req.TimeFrom); err != nil {
		return nil, fmt.Errorf("%w: time_from must be %s", apperrors.ErrValidation, timeLayout)
	}
	if _, err := time.Parse(timeLayout, req.TimeTo); err != nil {
		return nil, fmt.Errorf("%w: time_to must be %s", apperrors.ErrValidation, timeLayout)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if date.Before(today) {
		return nil, fmt.Errorf("%w: date %s is in the past", apperrors.ErrValidation, req.Date)
	}

	driver, err := s.store.GetDriverByID(req.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.CanPublish() {
		return nil, fmt.Errorf("%w: driver %s is not active and available",
			apperrors.ErrEligibility, req.DriverID)
	}

	overlapping, err := s.store.FindOverlappingSchedules(req.DriverID, req.Date, req.TimeFrom, req.TimeTo)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("%w: window %s-%s overlaps schedule %s on %s",
			apperrors.ErrConflict, req.TimeFrom, req.TimeTo, overlapping[0].ScheduleID, req.Date)
	}

	schedule := &models.Schedule{
		DriverID:        req.DriverID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Date:            req.Date,
		TimeFrom:        req.TimeFrom,
		TimeTo:          req.TimeTo,
		Status:          models.ScheduleActive,
	}
	if err := s.store.CreateSchedule(schedule); err != nil {
		return nil, err
	}

	s.log.Info("schedule published",
		zap.String("schedule_id", schedule.ScheduleID),
		zap.String("driver_id", schedule.DriverID),
		zap.String("date", schedule.Date),
		zap.String("window", schedule.TimeFrom+"-"+schedule.TimeTo))
	return schedule, nil
}

// Cancel withdraws a published window. Only an active schedule may be
// cancelled here: a busy one is released through its booking so the cascade
// stays in one place, and terminal states are final.
func (s *ScheduleService) Cancel(scheduleID string) (*models.Schedule, error) {
	schedule, err := s.store.GetSchedule(scheduleID)
	if err != nil {
		return nil, err
	}

	if schedule.Status == models.ScheduleBusy {
		return nil, fmt.Errorf("%w: schedule %s has a live booking, cancel the booking instead",
			apperrors.ErrConflict, scheduleID)
	}
	if err := schedule.TransitionTo(models.ScheduleCancelled, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, err)
	}

	if err := s.store.UpdateSchedule(schedule); err != nil {
		return nil, err
	}
	s.log.Info("schedule cancelled", zap.String("schedule_id", scheduleID))
	return schedule, nil
}

// ListByDriver returns the driver's schedules, newest first.
func (s *ScheduleService) ListByDriver(driverID string) ([]*models.Schedule, error) {
	if _, err := s.store.GetDriverByID(driverID); err != nil {
		return nil, err
	}
	return s.store.GetSchedulesByDriver(driverID)
}

// ListAvailable returns bookable inventory, optionally filtered by date.
func (s *ScheduleService) ListAvailable(date string) ([]*models.Schedule, error) {
	return s.store.GetAvailableSchedules(date)
}
