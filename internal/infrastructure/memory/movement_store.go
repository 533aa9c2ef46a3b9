package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementStore)(nil)

// MovementStore libro de movimientos en memoria. Seq es global y creciente.
type MovementStore struct {
	mu      sync.RWMutex
	seq     int64
	entries map[string][]entity.MovementEntry
}

// NewMovementStore construye el almacén vacío.
func NewMovementStore() *MovementStore {
	return &MovementStore{entries: make(map[string][]entity.MovementEntry)}
}

// Append guarda una copia de la entrada y asigna Seq (e ID si falta).
func (s *MovementStore) Append(_ context.Context, entry *entity.MovementEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	s.seq++
	entry.Seq = s.seq
	s.entries[entry.FacilityID] = append(s.entries[entry.FacilityID], *entry)
	return nil
}

// GetLatest devuelve la entrada mayor bajo (recorded_at, seq).
func (s *MovementStore) GetLatest(_ context.Context, facilityID string) (*entity.MovementEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *entity.MovementEntry
	list := s.entries[facilityID]
	for i := range list {
		if list[i].After(latest) {
			latest = &list[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

// SumWindow suma entradas y salidas con recorded_at >= since.
func (s *MovementStore) SumWindow(_ context.Context, facilityID string, since time.Time) (entity.FlowSums, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sums entity.FlowSums
	for _, e := range s.entries[facilityID] {
		if e.RecordedAt.Before(since) {
			continue
		}
		sums.SumIn += e.IndividualsIn
		sums.SumOut += e.IndividualsOut
	}
	return sums, nil
}

// ListByFacility lista movimientos en rango, más recientes primero.
func (s *MovementStore) ListByFacility(_ context.Context, facilityID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	s.mu.RLock()
	list := make([]*entity.MovementEntry, 0, len(s.entries[facilityID]))
	for _, e := range s.entries[facilityID] {
		if from != nil && e.RecordedAt.Before(*from) {
			continue
		}
		if to != nil && e.RecordedAt.After(*to) {
			continue
		}
		e := e
		list = append(list, &e)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].After(list[j]) })

	if offset >= len(list) {
		return []*entity.MovementEntry{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}
