package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ridewise/ridewise-backend/internal/models"
	"github.com/ridewise/ridewise-backend/internal/storage"
)

// UserHandler handles driver and passenger registration and lookup. Admin
// verification screens live elsewhere; a freshly registered driver starts
// inactive until verification flips them active.
type UserHandler struct {
	store storage.Store
	log   *zap.Logger
	dev   bool
}

func NewUserHandler(store storage.Store, log *zap.Logger, dev bool) *UserHandler {
	return &UserHandler{store: store, log: log, dev: dev}
}

type driverRegistration struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	VehicleNo   string `json:"vehicle_no" validate:"required"`
	VehicleType string `json:"vehicle_type" validate:"required"`
}

// RegisterDriver handles POST /api/drivers/register.
func (h *UserHandler) RegisterDriver(c *fiber.Ctx) error {
	var req driverRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationFields(err))
	}

	driver := &models.Driver{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		VehicleNo:   req.VehicleNo,
		VehicleType: req.VehicleType,
		Status:      models.UserInactive,
		IsAvailable: true,
	}
	if err := h.store.CreateDriver(driver); err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "driver registered, pending verification",
		"driver":  driver,
	})
}

// GetDriver handles GET /api/drivers/:driverID.
func (h *UserHandler) GetDriver(c *fiber.Ctx) error {
	driver, err := h.store.GetDriverByID(c.Params("driverID"))
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(driver)
}

// SetDriverAvailability handles PUT /api/drivers/:driverID/availability.
func (h *UserHandler) SetDriverAvailability(c *fiber.Ctx) error {
	var req struct {
		IsAvailable *bool `json:"is_available" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil || req.IsAvailable == nil {
		return badRequest(c, []string{"is_available"})
	}

	driver, err := h.store.GetDriverByID(c.Params("driverID"))
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}

	driver.IsAvailable = *req.IsAvailable
	if err := h.store.UpdateDriver(driver); err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(fiber.Map{
		"message": "availability updated",
		"driver":  driver,
	})
}

type passengerRegistration struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

// RegisterPassenger handles POST /api/passengers/register.
func (h *UserHandler) RegisterPassenger(c *fiber.Ctx) error {
	var req passengerRegistration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, validationFields(err))
	}

	passenger := &models.Passenger{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: models.UserActive,
	}
	if err := h.store.CreatePassenger(passenger); err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "passenger registered",
		"passenger": passenger,
	})
}

// GetPassenger handles GET /api/passengers/:passengerID.
func (h *UserHandler) GetPassenger(c *fiber.Ctx) error {
	passenger, err := h.store.GetPassengerByID(c.Params("passengerID"))
	if err != nil {
		return respondErr(c, err, h.log, h.dev)
	}
	return c.JSON(passenger)
}
