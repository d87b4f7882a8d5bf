package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conciliacion-api/internal/application/dto"
	"github.com/jhoicas/conciliacion-api/pkg/jwt"
)

// CanAccessLocation indica si el usuario del token puede operar sobre el local.
// admin ve todos; el resto solo el local de su token.
func CanAccessLocation(c *fiber.Ctx, locationID int64) bool {
	if GetRole(c) == jwt.RoleAdmin {
		return true
	}
	own := GetLocationID(c)
	return own != 0 && own == locationID
}

// RequireLocationScope verifica el query param location_id contra el token.
// Debe usarse DESPUÉS de AuthMiddleware.
//
// Comportamiento:
//   - 400 si location_id falta o no es numérico.
//   - 403 si el local no es el del token (salvo admin).
func RequireLocationScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID := int64(c.QueryInt("location_id", 0))
		if locationID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code:    "VALIDATION",
				Message: "location_id requerido",
			})
		}
		if !CanAccessLocation(c, locationID) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el local no corresponde al usuario",
			})
		}
		return c.Next()
	}
}
