package occupancy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

// RecordMovementUseCase anexa movimientos al libro de un centro y recalcula sus totales
// dentro de la sección exclusiva del centro (leer última + calcular + persistir).
type RecordMovementUseCase struct {
	txRunner TxRunner
	centers  repository.CenterRepository
	clock    Clock
	observer Observer
	log      zerolog.Logger
}

// NewRecordMovementUseCase construye el caso de uso. observer puede ser nil.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	centers repository.CenterRepository,
	clock Clock,
	observer Observer,
	log zerolog.Logger,
) *RecordMovementUseCase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RecordMovementUseCase{
		txRunner: txRunner,
		centers:  centers,
		clock:    clock,
		observer: observerOrNoop(observer),
		log:      log.With().Str("component", "ledger_writer").Logger(),
	}
}

// MovementInput entrada para registrar un movimiento.
type MovementInput struct {
	FacilityID     string
	RecordedAt     time.Time // cero = ahora
	FamiliesIn     int
	FamiliesOut    int
	IndividualsIn  int
	IndividualsOut int
	Breakdown      entity.VulnerabilityBreakdown
	ReportedBy     string
	Remarks        string
}

// Validate revisa los campos y devuelve *domain.ValidationError con el primer campo inválido.
func (in MovementInput) Validate() error {
	if in.FacilityID == "" {
		return &domain.ValidationError{Field: "facility_id", Reason: "requerido"}
	}
	fields := []struct {
		name  string
		value int
	}{
		{"families_in", in.FamiliesIn},
		{"families_out", in.FamiliesOut},
		{"individuals_in", in.IndividualsIn},
		{"individuals_out", in.IndividualsOut},
		{"children_count", in.Breakdown.Children},
		{"senior_count", in.Breakdown.Seniors},
		{"pwd_count", in.Breakdown.PWD},
		{"pregnant_count", in.Breakdown.Pregnant},
		{"lactating_count", in.Breakdown.Lactating},
	}
	for _, f := range fields {
		if f.value < 0 {
			return &domain.ValidationError{Field: f.name, Reason: "debe ser mayor o igual a cero"}
		}
	}
	return nil
}

// RecordMovement valida (sin tomar bloqueo), verifica que el centro exista y, dentro de la
// sección exclusiva del centro, lee la última entrada, aplica los deltas con recorte a cero
// y persiste la nueva entrada.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, in MovementInput) (*entity.MovementEntry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	center, err := uc.centers.GetByID(ctx, in.FacilityID)
	if err != nil {
		return nil, domain.NewStoreError("get center", err)
	}
	if center == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.clock.Now()
	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = now
	}

	var saved *entity.MovementEntry
	waitStart := time.Now()
	err = uc.txRunner.RunLocked(ctx, in.FacilityID, func(movRepo repository.MovementRepository) error {
		uc.observer.LockWait(time.Since(waitStart))

		prev, err := movRepo.GetLatest(ctx, in.FacilityID)
		if err != nil {
			return domain.NewStoreError("get latest", err)
		}
		prevIndividuals, prevFamilies := 0, 0
		if prev != nil {
			prevIndividuals = prev.RunningIndividuals
			prevFamilies = prev.RunningFamilies
		}

		entry := &entity.MovementEntry{
			ID:                 uuid.New().String(),
			FacilityID:         in.FacilityID,
			RecordedAt:         recordedAt,
			FamiliesIn:         in.FamiliesIn,
			FamiliesOut:        in.FamiliesOut,
			IndividualsIn:      in.IndividualsIn,
			IndividualsOut:     in.IndividualsOut,
			Breakdown:          in.Breakdown,
			VulnerableTotal:    in.Breakdown.Total(),
			RunningIndividuals: occupancy.ApplyDelta(prevIndividuals, in.IndividualsIn, in.IndividualsOut),
			RunningFamilies:    occupancy.ApplyDelta(prevFamilies, in.FamiliesIn, in.FamiliesOut),
			ReportedBy:         in.ReportedBy,
			Remarks:            in.Remarks,
			CreatedAt:          now,
		}
		if err := movRepo.Append(ctx, entry); err != nil {
			return domain.NewStoreError("append", err)
		}
		saved = entry
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrLockTimeout) {
			uc.observer.LockTimeout(in.FacilityID)
			uc.log.Warn().Str("center_id", in.FacilityID).Msg("bloqueo del centro no obtenido a tiempo")
			return nil, err
		}
		if errors.Is(err, domain.ErrStore) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewStoreError("commit", err)
	}

	uc.observer.MovementRecorded(in.FacilityID)
	uc.log.Debug().
		Str("center_id", saved.FacilityID).
		Str("entry_id", saved.ID).
		Int("running_individuals", saved.RunningIndividuals).
		Int("running_families", saved.RunningFamilies).
		Msg("movimiento registrado")
	return saved, nil
}
