package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

var _ repository.CenterRepository = (*CenterDirectory)(nil)

// CenterDirectory directorio de centros en memoria (pruebas y STORE_BACKEND=memory).
type CenterDirectory struct {
	mu      sync.RWMutex
	centers map[string]entity.EvacuationCenter
}

// NewCenterDirectory construye el directorio con los centros dados.
func NewCenterDirectory(centers ...entity.EvacuationCenter) *CenterDirectory {
	d := &CenterDirectory{centers: make(map[string]entity.EvacuationCenter, len(centers))}
	for _, c := range centers {
		d.centers[c.ID] = c
	}
	return d
}

// Put agrega o reemplaza un centro.
func (d *CenterDirectory) Put(center entity.EvacuationCenter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.centers[center.ID] = center
}

// GetByID devuelve nil, nil si no existe.
func (d *CenterDirectory) GetByID(_ context.Context, id string) (*entity.EvacuationCenter, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.centers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetCapacity devuelve la capacidad de individuos o domain.ErrNotFound.
func (d *CenterDirectory) GetCapacity(_ context.Context, id string) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.centers[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return c.IndividualCapacityMax, nil
}
