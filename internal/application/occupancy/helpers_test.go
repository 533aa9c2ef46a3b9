package occupancy_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

var testNow = time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// spyRunner cuenta llamadas y devuelve err sin ejecutar fn cuando err != nil.
type spyRunner struct {
	calls int
	err   error
	repo  repository.MovementRepository
}

func (s *spyRunner) RunLocked(_ context.Context, _ string, fn func(repository.MovementRepository) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return fn(s.repo)
}

// failingRepo falla en la operación indicada.
type failingRepo struct {
	repository.MovementRepository
	failOn string
}

var errDB = errors.New("conexión perdida")

func (f failingRepo) GetLatest(ctx context.Context, id string) (*entity.MovementEntry, error) {
	if f.failOn == "latest" {
		return nil, errDB
	}
	return f.MovementRepository.GetLatest(ctx, id)
}

func (f failingRepo) Append(ctx context.Context, e *entity.MovementEntry) error {
	if f.failOn == "append" {
		return errDB
	}
	return f.MovementRepository.Append(ctx, e)
}

func (f failingRepo) SumWindow(ctx context.Context, id string, since time.Time) (entity.FlowSums, error) {
	if f.failOn == "sum" {
		return entity.FlowSums{}, errDB
	}
	return f.MovementRepository.SumWindow(ctx, id, since)
}

type spyObserver struct {
	mu       sync.Mutex
	recorded int
	timeouts int
	levels   []occupancy.Level
}

func (o *spyObserver) MovementRecorded(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recorded++
}

func (o *spyObserver) LockWait(time.Duration) {}

func (o *spyObserver) LockTimeout(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.timeouts++
}

func (o *spyObserver) RiskAssessed(l occupancy.Level) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.levels = append(o.levels, l)
}
