package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// writeError traduce los errores de dominio a la respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrLedgerImmutable):
		status, code = fiber.StatusConflict, "LEDGER_IMMUTABLE"
	case errors.Is(err, domain.ErrProductNotFound):
		status, code = fiber.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domain.ErrMovementNotFound):
		status, code = fiber.StatusNotFound, "MOVEMENT_NOT_FOUND"
	default:
		switch inventory.ErrorReason(err) {
		case inventory.ReasonValidation:
			status, code = fiber.StatusBadRequest, "VALIDATION"
		case inventory.ReasonNotFound:
			status, code = fiber.StatusNotFound, "NOT_FOUND"
		case inventory.ReasonInsufficientStock:
			status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
		case inventory.ReasonConcurrentModification:
			status, code = fiber.StatusConflict, "CONCURRENT_MODIFICATION"
		case inventory.ReasonAlreadyReversed:
			status, code = fiber.StatusConflict, "ALREADY_REVERSED"
		case inventory.ReasonPersistence:
			status, code = fiber.StatusServiceUnavailable, "PERSISTENCE"
		}
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
}
