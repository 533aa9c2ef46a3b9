package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos (solo anexar).
type MovementRepository interface {
	// Append persiste la entrada y asigna ID/Seq si faltan.
	Append(ctx context.Context, entry *entity.MovementEntry) error
	// GetLatest devuelve la última entrada del centro ordenando por (recorded_at desc, seq desc); nil si no hay.
	GetLatest(ctx context.Context, facilityID string) (*entity.MovementEntry, error)
	// SumWindow suma individuals_in/out de las entradas con recorded_at >= since.
	SumWindow(ctx context.Context, facilityID string, since time.Time) (entity.FlowSums, error)
	ListByFacility(ctx context.Context, facilityID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error)
}
