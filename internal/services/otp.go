package services

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ridewise/ridewise-backend/internal/apperrors"
	"github.com/ridewise/ridewise-backend/internal/config"
	"github.com/ridewise/ridewise-backend/internal/jobs"
	"github.com/ridewise/ridewise-backend/internal/models"
	"github.com/ridewise/ridewise-backend/internal/storage"
	"github.com/ridewise/ridewise-backend/internal/utils"
)

// OTPService runs the ride-completion handshake: the driver requests a code,
// the passenger relays it, a successful verification closes out both the
// booking and the schedule. The handshake exists so a driver cannot mark a
// ride complete without the passenger present.
type OTPService struct {
	store      storage.Store
	dispatcher *jobs.Dispatcher
	ttl        time.Duration
	maxTries   int
	log        *zap.Logger
}

func NewOTPService(store storage.Store, dispatcher *jobs.Dispatcher, cfg *config.Config, log *zap.Logger) *OTPService {
	return &OTPService{
		store:      store,
		dispatcher: dispatcher,
		ttl:        cfg.OTPTTL,
		maxTries:   cfg.OTPMaxAttempts,
		log:        log,
	}
}

// Send issues a fresh code for the schedule's live booking: new 6-digit
// code, new expiry, attempt counter reset. Only legal while the schedule is
// busy. The code is relayed to the passenger by SMS; the returned value lets
// the handler expose it in development mode.
func (s *OTPService) Send(scheduleID string) (*models.Booking, string, error) {
	schedule, err := s.store.GetSchedule(strings.TrimSpace(scheduleID))
	if err != nil {
		return nil, "", err
	}
	if schedule.Status != models.ScheduleBusy {
		return nil, "", fmt.Errorf("%w: schedule %s is %s, not in ride",
			apperrors.ErrConflict, schedule.ScheduleID, schedule.Status)
	}

	booking, err := s.store.GetActiveBookingBySchedule(schedule.ScheduleID)
	if err != nil {
		return nil, "", err
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, "", fmt.Errorf("generate otp: %w", err)
	}

	expires := time.Now().Add(s.ttl)
	booking.OTP = code
	booking.OTPExpiresAt = &expires
	booking.OTPAttempts = 0
	if err := s.store.UpdateBooking(booking); err != nil {
		return nil, "", err
	}

	if passenger, err := s.store.GetPassengerByID(booking.PassengerID); err == nil && passenger.Phone != "" {
		s.dispatcher.Enqueue(jobs.Message{
			Channel: jobs.ChannelSMS,
			To:      passenger.Phone,
			Body: fmt.Sprintf("RideWise: your drop-off code for booking %s is %s. It expires in %d minutes.",
				booking.PNR, code, int(s.ttl.Minutes())),
		})
	}

	s.log.Info("otp issued",
		zap.String("pnr", booking.PNR),
		zap.String("schedule_id", schedule.ScheduleID),
		zap.Time("expires_at", expires))
	return booking, code, nil
}

// Verify checks the submitted code against the booking identified by
// schedule + PNR. Outcomes are distinct: attempt cap reached (before any
// comparison), expired, mismatch (counted), match (completes booking and
// schedule and wipes the OTP material, one transaction).
func (s *OTPService) Verify(scheduleID, code, pnr string) (*models.Booking, error) {
	scheduleID = strings.TrimSpace(scheduleID)
	code = strings.TrimSpace(code)
	pnr = strings.TrimSpace(pnr)

	booking, err := s.store.GetBookingByPNR(pnr)
	if err != nil {
		return nil, err
	}
	if booking.ScheduleID != scheduleID {
		return nil, fmt.Errorf("%w: booking %s does not belong to schedule %s",
			apperrors.ErrValidation, pnr, scheduleID)
	}
	if booking.Status != models.BookingActive {
		return nil, fmt.Errorf("%w: booking %s is already %s",
			apperrors.ErrConflict, pnr, booking.Status)
	}
	if booking.OTP == "" || booking.OTPExpiresAt == nil {
		return nil, fmt.Errorf("%w: no otp issued for booking %s", apperrors.ErrConflict, pnr)
	}

	// The cap is checked before the code so a guessed-right sixth attempt
	// still fails. The increment below is a single SQL statement, so the
	// cap holds under concurrent submissions.
	if booking.OTPAttempts >= s.maxTries {
		return nil, fmt.Errorf("%w: too many otp attempts, request a new code", apperrors.ErrConflict)
	}

	if time.Now().After(*booking.OTPExpiresAt) {
		return nil, fmt.Errorf("%w: otp expired, request a new code", apperrors.ErrExpired)
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(booking.OTP)) != 1 {
		attempts, incErr := s.store.IncrementOTPAttempts(pnr)
		if incErr != nil {
			return nil, incErr
		}
		if attempts >= s.maxTries {
			return nil, fmt.Errorf("%w: too many otp attempts, request a new code", apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("%w: invalid otp", apperrors.ErrConflict)
	}

	schedule, err := s.store.GetSchedule(scheduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := booking.TransitionTo(models.BookingCompleted, now); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, err)
	}
	if err := schedule.TransitionTo(models.ScheduleCompleted, now); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, err)
	}
	booking.ClearOTP()

	if err := s.store.CompleteRide(booking, schedule); err != nil {
		return nil, err
	}

	s.log.Info("ride completed",
		zap.String("pnr", booking.PNR),
		zap.String("schedule_id", schedule.ScheduleID))
	return booking, nil
}
