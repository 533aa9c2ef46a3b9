package occupancy

import (
	"context"
	"time"

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

// MovementHistoryUseCase consulta el historial de movimientos de un centro.
type MovementHistoryUseCase struct {
	centers   repository.CenterRepository
	movements repository.MovementRepository
}

// NewMovementHistoryUseCase construye el caso de uso.
func NewMovementHistoryUseCase(centers repository.CenterRepository, movements repository.MovementRepository) *MovementHistoryUseCase {
	return &MovementHistoryUseCase{centers: centers, movements: movements}
}

// List lista movimientos del centro, más recientes primero, con paginación.
func (uc *MovementHistoryUseCase) List(ctx context.Context, centerID string, from, to *time.Time, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	center, err := uc.centers.GetByID(ctx, centerID)
	if err != nil {
		return nil, domain.NewStoreError("get center", err)
	}
	if center == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.movements.ListByFacility(ctx, centerID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.NewStoreError("list movements", err)
	}
	items := make([]dto.MovementEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, dto.NewMovementEntryResponse(e))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
