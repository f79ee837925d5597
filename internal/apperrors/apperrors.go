package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for the booking/schedule domain. Callers wrap these with
// fmt.Errorf("%w: detail") and handlers map them back to HTTP status codes
// with StatusCode.
var (
	// ErrValidation covers missing, blank or malformed input. Nothing is
	// mutated when it is returned.
	ErrValidation = errors.New("validation failed")

	// ErrEligibility means the acting driver is not in a state that permits
	// the operation (not verified, not available).
	ErrEligibility = errors.New("driver not eligible")

	// ErrConflict covers overlapping schedule windows, a schedule that is no
	// longer active at claim time, illegal state transitions and OTP
	// mismatches.
	ErrConflict = errors.New("conflict")

	// ErrNotFound means a referenced schedule, booking, driver or passenger
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired means the OTP expiry has elapsed. Kept distinct from
	// ErrConflict so the client can prompt for a resend instead of a retype.
	ErrExpired = errors.New("expired")
)

// StatusCode maps a domain error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEligibility):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrExpired):
		return fiber.StatusGone
	default:
		return fiber.StatusInternalServerError
	}
}

// IsDomain reports whether err belongs to the domain taxonomy. Anything else
// is treated as an internal error and its detail is suppressed outside
// development mode.
func IsDomain(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrEligibility) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExpired)
}
