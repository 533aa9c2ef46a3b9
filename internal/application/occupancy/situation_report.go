package occupancy

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

// ReportRenderer genera la representación PDF del reporte de riesgo.
type ReportRenderer interface {
	RenderRiskReport(ctx context.Context, center *entity.EvacuationCenter, report dto.RiskReportResponse, generatedAt time.Time) ([]byte, error)
}

// SituationReportUseCase arma el reporte de situación imprimible de un centro.
type SituationReportUseCase struct {
	risk     *CongestionRiskUseCase
	centers  repository.CenterRepository
	renderer ReportRenderer
	clock    Clock
}

// NewSituationReportUseCase construye el caso de uso.
func NewSituationReportUseCase(risk *CongestionRiskUseCase, centers repository.CenterRepository, renderer ReportRenderer, clock Clock) *SituationReportUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SituationReportUseCase{risk: risk, centers: centers, renderer: renderer, clock: clock}
}

// RenderPDF calcula el riesgo con los mismos parámetros que la consulta JSON y lo renderiza.
func (uc *SituationReportUseCase) RenderPDF(ctx context.Context, facilityID string, windowMinutes, horizonMinutes int) ([]byte, error) {
	report, err := uc.risk.ComputeRisk(ctx, facilityID, windowMinutes, horizonMinutes)
	if err != nil {
		return nil, err
	}
	center, err := uc.centers.GetByID(ctx, facilityID)
	if err != nil {
		return nil, domain.NewStoreError("get center", err)
	}
	if center == nil {
		return nil, domain.ErrNotFound
	}
	out, err := uc.renderer.RenderRiskReport(ctx, center, dto.NewRiskReportResponse(report), uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("render situation report: %w", err)
	}
	return out, nil
}
