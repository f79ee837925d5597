package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ridewise/ridewise-backend/internal/apperrors"
)

var validate = newValidator()

// newValidator builds a validator that reports fields by their JSON names,
// so error payloads match what the client actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFields extracts the offending field names from a validator
// error so clients get the full list, not just the first miss.
func validationFields(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// respondErr maps a domain error to its status and message. Internal error
// detail is only exposed in development mode.
func respondErr(c *fiber.Ctx, err error, log *zap.Logger, dev bool) error {
	if apperrors.IsDomain(err) {
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	log.Error("internal error", zap.String("path", c.Path()), zap.Error(err))
	msg := "internal server error"
	if dev {
		msg = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

func badRequest(c *fiber.Ctx, fields []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "missing or invalid fields: " + strings.Join(fields, ", "),
		"fields": fields,
	})
}
