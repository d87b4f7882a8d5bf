package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conciliacion-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reconciliation *ReconciliationHandler
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	recon := api.Group("/reconciliation", AuthMiddleware(deps.JWTSecret))
	h := deps.Reconciliation

	// Escritura
	recon.Post("/generate", RequireRole(jwt.RoleAdmin, jwt.RoleEncargado), h.Generate)
	recon.Post("/generate/batch", RequireRole(jwt.RoleAdmin), h.GenerateBatch)

	// Lectura (todos los roles, acotado al local del token)
	readRoles := RequireRole(jwt.RoleAdmin, jwt.RoleEncargado, jwt.RoleCajero)
	scope := RequireLocationScope()
	recon.Get("/stock", readRoles, scope, h.GetStock)
	recon.Get("/cash", readRoles, scope, h.GetCash)
	recon.Get("/cash/location", readRoles, scope, h.GetLocationCash)
	recon.Get("/compensation", readRoles, scope, h.GetCompensation)
	recon.Get("/last-date", readRoles, scope, h.GetLastDate)
	recon.Get("/history", readRoles, scope, h.GetHistory)
	recon.Get("/summary", readRoles, scope, h.GetSummary)
	recon.Get("/report.pdf", readRoles, scope, h.GetReportPDF)
}
