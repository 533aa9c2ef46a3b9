package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

var _ occupancy.TxRunner = (*TxRunner)(nil)

// TxRunner sección exclusiva por centro dentro del proceso: un semáforo de peso 1 por centro.
type TxRunner struct {
	store   *MovementStore
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewTxRunner construye el runner. timeout acota la espera por el bloqueo.
func NewTxRunner(store *MovementStore, timeout time.Duration) *TxRunner {
	return &TxRunner{store: store, timeout: timeout, locks: make(map[string]*semaphore.Weighted)}
}

func (r *TxRunner) lockFor(facilityID string) *semaphore.Weighted {
	r.mu.Lock()
	defer r.mu.Unlock()
	sem, ok := r.locks[facilityID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		r.locks[facilityID] = sem
	}
	return sem
}

// RunLocked adquiere el bloqueo del centro (o devuelve domain.ErrLockTimeout) y ejecuta fn.
func (r *TxRunner) RunLocked(ctx context.Context, facilityID string, fn func(movRepo repository.MovementRepository) error) error {
	sem := r.lockFor(facilityID)

	lockCtx, cancel := context.WithTimeout(ctx, occupancy.LockBudget(ctx, r.timeout))
	defer cancel()
	if err := sem.Acquire(lockCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: centro %s", domain.ErrLockTimeout, facilityID)
		}
		return err
	}
	defer sem.Release(1)

	return fn(r.store)
}
