package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BookingStatus is a closed enum persisted as a string.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"    // reserved, ride not yet closed out
	BookingCompleted BookingStatus = "completed" // OTP verified
	BookingCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingActive:    {BookingCompleted, BookingCancelled},
	BookingCompleted: {},
	BookingCancelled: {},
}

// CanTransition reports whether from -> to is an allowed move.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	if s == to {
		return true
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Booking is a confirmed reservation against exactly one schedule. The PNR
// is the user-facing reference. The ride phase (waiting vs. OTP pending) is
// carried by the linked schedule's busy status plus the OTP fields here.
type Booking struct {
	gorm.Model

	PNR          string        `json:"pnr" gorm:"uniqueIndex;size:16"`
	ScheduleID   string        `json:"schedule_id" gorm:"index;size:32;not null"`
	PassengerID  string        `json:"passenger_id" gorm:"index;size:32;not null"`
	DriverID     string        `json:"driver_id" gorm:"index;size:32;not null"`
	LocationFrom string        `json:"location_from" gorm:"size:255"`
	LocationTo   string        `json:"location_to" gorm:"size:255"`
	Date         string        `json:"date" gorm:"size:10"`
	Time         string        `json:"time" gorm:"size:5"`
	Distance     float64       `json:"distance"` // km
	Price        float64       `json:"price"`
	Status       BookingStatus `json:"status" gorm:"type:varchar(16);index;not null"`

	// OTP handshake material; hidden from JSON, single-use, time-bounded.
	OTP          string     `json:"-" gorm:"size:6"`
	OTPExpiresAt *time.Time `json:"-"`
	OTPAttempts  int        `json:"-" gorm:"default:0"`

	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}

// TransitionTo applies a status change, rejecting moves the transition table
// does not allow and stamping the terminal timestamps.
func (b *Booking) TransitionTo(to BookingStatus, now time.Time) error {
	if !b.Status.CanTransition(to) {
		return fmt.Errorf("invalid booking status transition: %s -> %s", b.Status, to)
	}
	b.Status = to

	switch to {
	case BookingCompleted:
		if b.CompletedAt == nil {
			t := now
			b.CompletedAt = &t
		}
	case BookingCancelled:
		if b.CancelledAt == nil {
			t := now
			b.CancelledAt = &t
		}
	}
	return nil
}

// ClearOTP wipes the handshake material after a successful verification.
func (b *Booking) ClearOTP() {
	b.OTP = ""
	b.OTPExpiresAt = nil
	b.OTPAttempts = 0
}

// BookingDetail is the read projection returned for GET by PNR: the booking
// joined with driver and passenger display fields.
type BookingDetail struct {
	Booking
	DriverName     string  `json:"driver_name"`
	DriverPhone    string  `json:"driver_phone"`
	VehicleNo      string  `json:"vehicle_no"`
	DriverRating   float64 `json:"driver_rating"`
	PassengerName  string  `json:"passenger_name"`
	PassengerPhone string  `json:"passenger_phone"`
}
