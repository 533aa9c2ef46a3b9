package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecordMovement  *occupancy.RecordMovementUseCase
	MovementHistory *occupancy.MovementHistoryUseCase
	CongestionRisk  *occupancy.CongestionRiskUseCase
	SituationReport *occupancy.SituationReportUseCase
	Centers         repository.CenterRepository
	RiskDefaults    RiskDefaults
	MetricsHandler  http.Handler // nil = sin /metrics
	JWTSecret       string
	Logger          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Centros: libro de ocupación y riesgo de congestión
	centers := protected.Group("/centers")
	h := NewOccupancyHandler(deps.RecordMovement, deps.MovementHistory, deps.CongestionRisk, deps.SituationReport, deps.RiskDefaults, deps.Logger)
	centers.Post("/:id/movements",
		RequireRole(entity.LedgerWriterRoles...),
		RequireCenterScope(deps.Centers),
		h.RecordMovement,
	)
	centers.Get("/:id/movements", h.ListMovements)
	centers.Get("/:id/congestion-risk", h.CongestionRisk)
	centers.Get("/:id/congestion-risk/pdf", h.CongestionRiskPDF)
}
