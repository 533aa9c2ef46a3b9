package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
)

// centerLookup es el contrato mínimo que necesita el middleware para conocer el municipio del centro.
type centerLookup interface {
	GetByID(ctx context.Context, id string) (*entity.EvacuationCenter, error)
}

// RequireCenterScope limita la escritura al alcance del usuario. Debe usarse DESPUÉS de
// AuthMiddleware y RequireRole, en rutas con parámetro :id de centro.
//
// Comportamiento:
//   - PROVINCIAL_ADMIN  → cualquier centro.
//   - MUNICIPAL_ADMIN   → centros de su municipio (403 si no coincide).
//   - EVAC_CENTER_STAFF → solo su centro asignado (403 si no coincide).
//   - Centro inexistente → sigue al handler, que responde 404.
//   - 503 Service Unavailable → fallo al consultar el directorio.
func RequireCenterScope(centers centerLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		centerID := c.Params("id")
		switch GetRole(c) {
		case entity.RoleProvincialAdmin:
			return c.Next()
		case entity.RoleEvacCenterStaff:
			if GetCenterID(c) != centerID {
				return forbiddenScope(c)
			}
			return c.Next()
		case entity.RoleMunicipalAdmin:
			center, err := centers.GetByID(c.Context(), centerID)
			if err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
					Code:    "STORE_ERROR",
					Message: "no se pudo verificar el centro, intente más tarde",
				})
			}
			if center == nil {
				return c.Next()
			}
			if municipality := GetMunicipality(c); municipality == "" || municipality != center.Municipality {
				return forbiddenScope(c)
			}
			return c.Next()
		}
		return forbiddenScope(c)
	}
}

func forbiddenScope(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
		Code:    "FORBIDDEN",
		Message: "el centro está fuera del alcance del usuario",
	})
}
