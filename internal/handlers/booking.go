package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ridewise/ridewise-backend/internal/services"
)

// BookingHandler handles booking-related requests.
type BookingHandler struct {
	bookings *services.BookingService
	log      *zap.Logger
	dev      bool
}

func NewBookingHandler(bookings *services.BookingService, log *zap.Logger, dev bool) *BookingHandler {
	return &BookingHandler{bookings: bookings, log: log, dev: dev}
}

// Create handles POST /api/booking/create.
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var req services.CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationFields(err))
	}

	booking, err := h.bookings.Create(req)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"pnr":     booking.PNR,
		"booking": booking,
	})
}

// GetByPNR handles GET /api/booking/pnr/:pnr.
func (h *BookingHandler) GetByPNR(c *fiber.Ctx) error {
	pnr := c.Params("pnr")
	if pnr == "" {
		return badRequest(c, []string{"pnr"})
	}

	detail, err := h.bookings.GetByPNR(pnr)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(detail)
}

// ListByPassenger handles GET /api/booking/passenger/:passengerID. An empty
// list is a valid result, not an error.
func (h *BookingHandler) ListByPassenger(c *fiber.Ctx) error {
	passengerID := c.Params("passengerID")
	if passengerID == "" {
		return badRequest(c, []string{"passenger_id"})
	}

	bookings, err := h.bookings.ListByPassenger(passengerID)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// Cancel handles PUT /api/booking/:pnr/cancel. The response carries the
// authoritative state: a client that updated optimistically must reconcile
// against it (refetch on error).
func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	pnr := c.Params("pnr")
	if pnr == "" {
		return badRequest(c, []string{"pnr"})
	}

	booking, err := h.bookings.CancelByPNR(pnr)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"message": "booking cancelled",
		"booking": booking,
	})
}

// Rate handles POST /api/booking/rate.
func (h *BookingHandler) Rate(c *fiber.Ctx) error {
	var req services.RateDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationFields(err))
	}

	rating, err := h.bookings.RateDriver(req)
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "rating recorded",
		"rating":  rating,
	})
}
