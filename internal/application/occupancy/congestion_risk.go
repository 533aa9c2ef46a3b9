package occupancy

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

// CongestionRiskUseCase calcula el riesgo de congestión de un centro a demanda.
// Solo lee el libro; no toma el bloqueo de escritura y no guarda estado entre llamadas.
type CongestionRiskUseCase struct {
	centers   repository.CenterRepository
	movements repository.MovementRepository
	clock     Clock
	weights   occupancy.Weights
	observer  Observer
}

// NewCongestionRiskUseCase construye el caso de uso. Los pesos deben venir validados.
func NewCongestionRiskUseCase(
	centers repository.CenterRepository,
	movements repository.MovementRepository,
	clock Clock,
	weights occupancy.Weights,
	observer Observer,
) *CongestionRiskUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CongestionRiskUseCase{
		centers:   centers,
		movements: movements,
		clock:     clock,
		weights:   weights,
		observer:  observerOrNoop(observer),
	}
}

// ComputeRisk devuelve el reporte de riesgo del centro.
// Centro inexistente: domain.ErrNotFound. Capacidad faltante o <= 0: *domain.RiskError.
// Un libro vacío no es error: las cifras quedan en cero y el nivel en LOW.
func (uc *CongestionRiskUseCase) ComputeRisk(ctx context.Context, facilityID string, windowMinutes, horizonMinutes int) (*occupancy.Report, error) {
	if windowMinutes <= 0 {
		return nil, &domain.ValidationError{Field: "window", Reason: "debe ser mayor que cero"}
	}
	if horizonMinutes < 0 {
		return nil, &domain.ValidationError{Field: "horizon", Reason: "no puede ser negativo"}
	}

	capacity, err := uc.centers.GetCapacity(ctx, facilityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("get capacity", err)
	}
	if capacity <= 0 {
		return nil, &domain.RiskError{FacilityID: facilityID, Reason: domain.ReasonInvalidCapacity}
	}

	latest, err := uc.movements.GetLatest(ctx, facilityID)
	if err != nil {
		return nil, domain.NewStoreError("get latest", err)
	}

	since := uc.clock.Now().Add(-time.Duration(windowMinutes) * time.Minute)
	flow, err := uc.movements.SumWindow(ctx, facilityID, since)
	if err != nil {
		return nil, domain.NewStoreError("sum window", err)
	}

	a := occupancy.Assess(occupancy.Inputs{
		Capacity:       capacity,
		Latest:         latest,
		Flow:           flow,
		WindowMinutes:  windowMinutes,
		HorizonMinutes: horizonMinutes,
	}, uc.weights)

	report := &occupancy.Report{
		FacilityID:     facilityID,
		Capacity:       capacity,
		WindowMinutes:  windowMinutes,
		HorizonMinutes: horizonMinutes,
		TotalInWindow:  flow.SumIn,
		TotalOutWindow: flow.SumOut,
		Assessment:     a,
		Recommendation: occupancy.Recommendation(a.Level),
	}
	if latest != nil {
		t := latest.RecordedAt
		report.LatestLogTime = &t
	}

	uc.observer.RiskAssessed(a.Level)
	return report, nil
}
