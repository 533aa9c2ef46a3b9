package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
)

// lockRetryAfterSeconds valor de Retry-After cuando el bloqueo del centro no se obtuvo.
const lockRetryAfterSeconds = 1

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validation.Error(), Field: validation.Field})
	}
	var riskErr *domain.RiskError
	if errors.As(err, &riskErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.RiskErrorResponse{
			CenterID: riskErr.FacilityID,
			Code:     "INVALID_CAPACITY",
			Error:    riskErr.Reason,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "centro de evacuación no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrLockTimeout):
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(lockRetryAfterSeconds))
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "el centro está ocupado por otra escritura, reintente"})
	case errors.Is(err, domain.ErrStore):
		log.Error().Err(err).Str("path", c.Path()).Msg("fallo del almacén")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_ERROR", Message: "almacén no disponible, intente más tarde"})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
