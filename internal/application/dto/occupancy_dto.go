package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
)

// RecordMovementRequest body para POST /api/centers/:id/movements.
// RecordedAt vacío = ahora; puede venir con fecha anterior (corrección).
type RecordMovementRequest struct {
	RecordedAt     *time.Time `json:"recorded_at,omitempty"`
	FamiliesIn     int        `json:"families_in"`
	FamiliesOut    int        `json:"families_out"`
	IndividualsIn  int        `json:"individuals_in"`
	IndividualsOut int        `json:"individuals_out"`
	Children       int        `json:"children_count"`
	Seniors        int        `json:"senior_count"`
	PWD            int        `json:"pwd_count"`
	Pregnant       int        `json:"pregnant_count"`
	Lactating      int        `json:"lactating_count"`
	Remarks        string     `json:"remarks,omitempty"`
}

// MovementEntryResponse representación de una entrada del libro.
type MovementEntryResponse struct {
	ID                 string    `json:"id"`
	CenterID           string    `json:"center_id"`
	RecordedAt         time.Time `json:"recorded_at"`
	FamiliesIn         int       `json:"families_in"`
	FamiliesOut        int       `json:"families_out"`
	IndividualsIn      int       `json:"individuals_in"`
	IndividualsOut     int       `json:"individuals_out"`
	Children           int       `json:"children_count"`
	Seniors            int       `json:"senior_count"`
	PWD                int       `json:"pwd_count"`
	Pregnant           int       `json:"pregnant_count"`
	Lactating          int       `json:"lactating_count"`
	VulnerableTotal    int       `json:"vulnerable_total"`
	RunningIndividuals int       `json:"running_individuals"`
	RunningFamilies    int       `json:"running_families"`
	ReportedBy         string    `json:"reported_by,omitempty"`
	Remarks            string    `json:"remarks,omitempty"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Items []MovementEntryResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// NewMovementEntryResponse construye la respuesta a partir de la entidad.
func NewMovementEntryResponse(e *entity.MovementEntry) MovementEntryResponse {
	return MovementEntryResponse{
		ID:                 e.ID,
		CenterID:           e.FacilityID,
		RecordedAt:         e.RecordedAt,
		FamiliesIn:         e.FamiliesIn,
		FamiliesOut:        e.FamiliesOut,
		IndividualsIn:      e.IndividualsIn,
		IndividualsOut:     e.IndividualsOut,
		Children:           e.Breakdown.Children,
		Seniors:            e.Breakdown.Seniors,
		PWD:                e.Breakdown.PWD,
		Pregnant:           e.Breakdown.Pregnant,
		Lactating:          e.Breakdown.Lactating,
		VulnerableTotal:    e.VulnerableTotal,
		RunningIndividuals: e.RunningIndividuals,
		RunningFamilies:    e.RunningFamilies,
		ReportedBy:         e.ReportedBy,
		Remarks:            e.Remarks,
	}
}

// RiskReportResponse payload de GET /api/centers/:id/congestion-risk.
// Razones y puntaje se redondean a 4 decimales; predicted_total a entero. Solo presentación.
type RiskReportResponse struct {
	CenterID           string     `json:"center_id"`
	Capacity           int        `json:"capacity"`
	LatestLogTime      *time.Time `json:"latest_log_time"`
	CurrentTotal       int        `json:"current_total"`
	Occupancy          float64    `json:"occupancy"`
	WindowMinutes      int        `json:"window_minutes"`
	HorizonMinutes     int        `json:"horizon_minutes"`
	TotalInWindow      int        `json:"total_in_window"`
	TotalOutWindow     int        `json:"total_out_window"`
	NetFlow            int        `json:"net_flow"`
	NetRatePerMin      float64    `json:"net_rate_per_min"`
	PredictedTotal     int        `json:"predicted_total"`
	PredictedOccupancy float64    `json:"predicted_occupancy"`
	VulnerableTotal    int        `json:"vulnerable_total"`
	VulnerabilityRatio float64    `json:"vulnerability_ratio"`
	RiskScore          float64    `json:"risk_score"`
	RiskLevel          string     `json:"risk_level"`
	Recommendation     string     `json:"recommendation"`
}

// RiskErrorResponse resultado estructurado cuando el centro no tiene capacidad válida.
type RiskErrorResponse struct {
	CenterID string `json:"center_id"`
	Code     string `json:"code"`
	Error    string `json:"error"`
}

// NewRiskReportResponse mapea el reporte de dominio al payload.
func NewRiskReportResponse(r *occupancy.Report) RiskReportResponse {
	return RiskReportResponse{
		CenterID:           r.FacilityID,
		Capacity:           r.Capacity,
		LatestLogTime:      r.LatestLogTime,
		CurrentTotal:       r.CurrentTotal,
		Occupancy:          round4(r.Occupancy),
		WindowMinutes:      r.WindowMinutes,
		HorizonMinutes:     r.HorizonMinutes,
		TotalInWindow:      r.TotalInWindow,
		TotalOutWindow:     r.TotalOutWindow,
		NetFlow:            r.NetFlow(),
		NetRatePerMin:      round4(r.NetRatePerMin),
		PredictedTotal:     int(exactDecimal(r.PredictedTotal).RoundBank(0).IntPart()),
		PredictedOccupancy: round4(r.PredictedOccupancy),
		VulnerableTotal:    r.VulnerableTotal,
		VulnerabilityRatio: round4(r.VulnerabilityRatio),
		RiskScore:          round4(r.Score),
		RiskLevel:          string(r.Level),
		Recommendation:     r.Recommendation,
	}
}

// round4 redondea a 4 decimales; los empates exactos (.5) van al vecino par.
func round4(x float64) float64 {
	return exactDecimal(x).RoundBank(4).InexactFloat64()
}

// exactDecimal expansión decimal exacta del float64. NewFromFloat usa la representación corta,
// que convierte 0.03335 (binario 0.033349999...) en un empate que no existe.
func exactDecimal(x float64) decimal.Decimal {
	return decimal.NewFromFloatWithExponent(x, -1074)
}
