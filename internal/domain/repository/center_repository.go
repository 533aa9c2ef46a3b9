package repository

import (
	"context"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
)

// CenterRepository puerto de lectura del directorio de centros de evacuación.
type CenterRepository interface {
	// GetByID devuelve nil, nil si el centro no existe.
	GetByID(ctx context.Context, id string) (*entity.EvacuationCenter, error)
	// GetCapacity devuelve domain.ErrNotFound si el centro no existe; capacidad sin definir se reporta como 0.
	GetCapacity(ctx context.Context, id string) (int, error)
}
