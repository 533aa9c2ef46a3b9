package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	"github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
)

// Límites de los parámetros de consulta del riesgo (minutos).
const (
	minWindowMinutes  = 5
	maxWindowMinutes  = 1440
	minHorizonMinutes = 5
	maxHorizonMinutes = 360
)

// RiskDefaults valores de window/horizon cuando el query no los trae.
type RiskDefaults struct {
	WindowMinutes  int
	HorizonMinutes int
}

// OccupancyHandler maneja el libro de ocupación y el riesgo de congestión (protegido).
type OccupancyHandler struct {
	record   *occupancy.RecordMovementUseCase
	history  *occupancy.MovementHistoryUseCase
	risk     *occupancy.CongestionRiskUseCase
	report   *occupancy.SituationReportUseCase
	defaults RiskDefaults
	log      zerolog.Logger
}

// NewOccupancyHandler construye el handler.
func NewOccupancyHandler(
	record *occupancy.RecordMovementUseCase,
	history *occupancy.MovementHistoryUseCase,
	risk *occupancy.CongestionRiskUseCase,
	report *occupancy.SituationReportUseCase,
	defaults RiskDefaults,
	log zerolog.Logger,
) *OccupancyHandler {
	if defaults.WindowMinutes <= 0 {
		defaults.WindowMinutes = 60
	}
	if defaults.HorizonMinutes <= 0 {
		defaults.HorizonMinutes = 60
	}
	return &OccupancyHandler{
		record:   record,
		history:  history,
		risk:     risk,
		report:   report,
		defaults: defaults,
		log:      log.With().Str("component", "occupancy_http").Logger(),
	}
}

// RecordMovement godoc
// @Summary      Registrar movimiento en un centro
// @Description  Anexa entradas/salidas al libro del centro. Los totales se recalculan bajo bloqueo por centro.
// @Tags         occupancy
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del centro"
// @Param        body  body  dto.RecordMovementRequest  true  "conteos de familias, individuos y población vulnerable"
// @Success      201   {object}  dto.MovementEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/centers/{id}/movements [post]
func (h *OccupancyHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.record.RecordMovementFromRequest(c.Context(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementEntryResponse(entry))
}

// ListMovements godoc
// @Summary      Historial de movimientos de un centro
// @Tags         occupancy
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del centro"
// @Param        from    query  string  false  "desde (RFC3339)"
// @Param        to      query  string  false  "hasta (RFC3339)"
// @Param        limit   query  int     false  "máximo 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/centers/{id}/movements [get]
func (h *OccupancyHandler) ListMovements(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return writeError(c, h.log, err)
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return writeError(c, h.log, err)
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.history.List(c.Context(), c.Params("id"), from, to, page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CongestionRisk godoc
// @Summary      Riesgo de congestión de un centro
// @Description  Ocupación actual, flujo neto de la ventana y proyección al horizonte, con nivel y recomendación.
// @Tags         occupancy
// @Security     Bearer
// @Produce      json
// @Param        id       path   string  true   "ID del centro"
// @Param        window   query  int     false  "ventana en minutos (5-1440, por defecto 60)"
// @Param        horizon  query  int     false  "horizonte en minutos (5-360, por defecto 60)"
// @Success      200  {object}  dto.RiskReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.RiskErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/centers/{id}/congestion-risk [get]
func (h *OccupancyHandler) CongestionRisk(c *fiber.Ctx) error {
	window, horizon, err := h.riskParams(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	report, err := h.risk.ComputeRisk(c.Context(), c.Params("id"), window, horizon)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewRiskReportResponse(report))
}

// CongestionRiskPDF godoc
// @Summary      Reporte de situación en PDF
// @Tags         occupancy
// @Security     Bearer
// @Produce      application/pdf
// @Param        id       path   string  true   "ID del centro"
// @Param        window   query  int     false  "ventana en minutos (5-1440, por defecto 60)"
// @Param        horizon  query  int     false  "horizonte en minutos (5-360, por defecto 60)"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.RiskErrorResponse
// @Router       /api/centers/{id}/congestion-risk/pdf [get]
func (h *OccupancyHandler) CongestionRiskPDF(c *fiber.Ctx) error {
	window, horizon, err := h.riskParams(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	centerID := c.Params("id")
	pdf, err := h.report.RenderPDF(c.Context(), centerID, window, horizon)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="situacion-`+centerID+`.pdf"`)
	return c.Send(pdf)
}

func (h *OccupancyHandler) riskParams(c *fiber.Ctx) (window, horizon int, err error) {
	window, err = clampedIntQuery(c, "window", h.defaults.WindowMinutes, minWindowMinutes, maxWindowMinutes)
	if err != nil {
		return 0, 0, err
	}
	horizon, err = clampedIntQuery(c, "horizon", h.defaults.HorizonMinutes, minHorizonMinutes, maxHorizonMinutes)
	if err != nil {
		return 0, 0, err
	}
	return window, horizon, nil
}

// clampedIntQuery lee un entero del query; ausente = def, fuera de rango se recorta a [lo, hi].
func clampedIntQuery(c *fiber.Ctx, key string, def, lo, hi int) (int, error) {
	raw := c.Query(key)
	v := def
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, &domain.ValidationError{Field: key, Reason: "debe ser un entero"}
		}
		v = n
	}
	return max(lo, min(v, hi)), nil
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &domain.ValidationError{Field: key, Reason: "fecha RFC3339 inválida"}
	}
	return &t, nil
}
