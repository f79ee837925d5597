package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ridewise/ridewise-backend/internal/utils"
)

// ScheduleStatus is a closed enum persisted as a string.
type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "active"    // published, bookable
	ScheduleBusy      ScheduleStatus = "busy"      // claimed by a booking
	ScheduleCompleted ScheduleStatus = "completed" // ride closed out via OTP
	ScheduleCancelled ScheduleStatus = "cancelled"
)

// scheduleTransitions is the allowed-transition table. completed and
// cancelled are terminal. busy→cancelled exists only for the booking-cancel
// cascade; a bare schedule cancel is legal from active alone (policy enforced
// in the service layer).
var scheduleTransitions = map[ScheduleStatus][]ScheduleStatus{
	ScheduleActive:    {ScheduleBusy, ScheduleCancelled},
	ScheduleBusy:      {ScheduleCompleted, ScheduleCancelled},
	ScheduleCompleted: {},
	ScheduleCancelled: {},
}

// CanTransition reports whether from -> to is an allowed move.
func (s ScheduleStatus) CanTransition(to ScheduleStatus) bool {
	if s == to {
		return true
	}
	for _, allowed := range scheduleTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Schedule is a driver's published availability window for a route on a
// date. Date is "2006-01-02", TimeFrom/TimeTo are "15:04"; both orderings
// compare correctly as strings, which is what the overlap query relies on.
type Schedule struct {
	gorm.Model

	ScheduleID      string         `json:"schedule_id" gorm:"uniqueIndex;size:32"`
	DriverID        string         `json:"driver_id" gorm:"index;size:32;not null"`
	PickupLocation  string         `json:"pickup_location" gorm:"size:255"`
	DropoffLocation string         `json:"dropoff_location" gorm:"size:255"`
	Date            string         `json:"date" gorm:"index;size:10;not null"`
	TimeFrom        string         `json:"time_from" gorm:"size:5;not null"`
	TimeTo          string         `json:"time_to" gorm:"size:5;not null"`
	Status          ScheduleStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	CompletedAt     *time.Time     `json:"completed_at"`
	CancelledAt     *time.Time     `json:"cancelled_at"`
}

// BeforeCreate hook generates the ScheduleID and defaults the status.
func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ScheduleID == "" {
		s.ScheduleID = utils.GenerateEntityID("SC")
	}
	if s.Status == "" {
		s.Status = ScheduleActive
	}
	return nil
}

// TransitionTo applies a status change, rejecting moves the transition table
// does not allow and stamping the terminal timestamps.
func (s *Schedule) TransitionTo(to ScheduleStatus, now time.Time) error {
	if !s.Status.CanTransition(to) {
		return fmt.Errorf("invalid schedule status transition: %s -> %s", s.Status, to)
	}
	s.Status = to

	switch to {
	case ScheduleCompleted:
		if s.CompletedAt == nil {
			t := now
			s.CompletedAt = &t
		}
	case ScheduleCancelled:
		if s.CancelledAt == nil {
			t := now
			s.CancelledAt = &t
		}
	}
	return nil
}

// Overlaps reports whether the candidate window [timeFrom,timeTo) intersects
// this schedule's window: the candidate start falls inside it, the candidate
// end falls inside it, or the candidate fully contains it.
func (s *Schedule) Overlaps(timeFrom, timeTo string) bool {
	if s.TimeFrom <= timeFrom && timeFrom < s.TimeTo {
		return true
	}
	if s.TimeFrom < timeTo && timeTo <= s.TimeTo {
		return true
	}
	return timeFrom <= s.TimeFrom && s.TimeTo <= timeTo
}
