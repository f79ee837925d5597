package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ridewise/ridewise-backend/internal/services"
)

// ScheduleHandler handles schedule lifecycle requests, including the OTP
// handshake endpoints which are addressed by schedule.
type ScheduleHandler struct {
	schedules *services.ScheduleService
	bookings  *services.BookingService
	otp       *services.OTPService
	log       *zap.Logger
	dev       bool
}

func NewScheduleHandler(schedules *services.ScheduleService, bookings *services.BookingService, otp *services.OTPService, log *zap.Logger, dev bool) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, bookings: bookings, otp: otp, log: log, dev: dev}
}

// Create handles POST /api/schedules.
func (h *ScheduleHandler) Create(c *fiber.Ctx) error {
	var req services.CreateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationFields(err))
	}

	schedule, err := h.schedules.Create(req)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "schedule created",
		"schedule": schedule,
	})
}

// ListAvailable handles GET /api/schedules?date=YYYY-MM-DD.
func (h *ScheduleHandler) ListAvailable(c *fiber.Ctx) error {
	schedules, err := h.schedules.ListAvailable(c.Query("date"))
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"schedules": schedules,
		"count":     len(schedules),
	})
}

// ListByDriver handles GET /api/schedules/driver/:driverID.
func (h *ScheduleHandler) ListByDriver(c *fiber.Ctx) error {
	driverID := c.Params("driverID")
	if driverID == "" {
		return badRequest(c, []string{"driver_id"})
	}

	schedules, err := h.schedules.ListByDriver(driverID)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"schedules": schedules,
		"count":     len(schedules),
	})
}

// Cancel handles PUT /api/schedules/:scheduleID/cancel.
func (h *ScheduleHandler) Cancel(c *fiber.Ctx) error {
	scheduleID := c.Params("scheduleID")
	if scheduleID == "" {
		return badRequest(c, []string{"schedule_id"})
	}

	schedule, err := h.schedules.Cancel(scheduleID)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"message":  "schedule cancelled",
		"schedule": schedule,
	})
}

// SendOTP handles POST /api/schedules/:scheduleID/send-otp. The code itself
// goes to the passenger by SMS; it is echoed in the response only in
// development mode.
func (h *ScheduleHandler) SendOTP(c *fiber.Ctx) error {
	scheduleID := c.Params("scheduleID")
	if scheduleID == "" {
		return badRequest(c, []string{"schedule_id"})
	}

	booking, code, err := h.otp.Send(scheduleID)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}

	resp := fiber.Map{
		"message": "otp sent",
		"pnr":     booking.PNR,
	}
	if h.dev {
		resp["otp"] = code
	}
	return c.JSON(resp)
}

// VerifyOTP handles POST /api/schedules/:scheduleID/verify-otp.
func (h *ScheduleHandler) VerifyOTP(c *fiber.Ctx) error {
	scheduleID := c.Params("scheduleID")
	if scheduleID == "" {
		return badRequest(c, []string{"schedule_id"})
	}

	var req struct {
		OTP string `json:"otp" validate:"required,len=6,numeric"`
		PNR string `json:"pnr" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationFields(err))
	}

	booking, err := h.otp.Verify(scheduleID, req.OTP, req.PNR)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"message": "ride completed",
		"booking": booking,
	})
}

// CancelBooking handles driver-side cancellation addressed by schedule:
// PUT /api/schedules/:scheduleID/cancel-booking.
func (h *ScheduleHandler) CancelBooking(c *fiber.Ctx) error {
	scheduleID := c.Params("scheduleID")
	if scheduleID == "" {
		return badRequest(c, []string{"schedule_id"})
	}

	booking, err := h.bookings.CancelBySchedule(scheduleID)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"message": "booking cancelled",
		"booking": booking,
	})
}
