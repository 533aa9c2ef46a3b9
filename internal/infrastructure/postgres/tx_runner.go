package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

var _ occupancy.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con la fila del centro bloqueada.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout acota la espera por la fila.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// RunLocked inicia una transacción, bloquea la fila del centro (SELECT FOR UPDATE) con
// lock_timeout, ejecuta fn con el repositorio atado a la tx y hace Commit o Rollback.
// Si el contexto trae un presupuesto de espera menor (occupancy.LockBudget), se usa ese.
func (r *TxRunner) RunLocked(ctx context.Context, facilityID string, fn func(movRepo repository.MovementRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, lockTimeoutStatement(occupancy.LockBudget(ctx, r.lockTimeout))); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM evacuation_centers WHERE id = $1 FOR UPDATE`, facilityID).Scan(&id)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.ErrNotFound
		case isLockNotAvailable(err):
			return fmt.Errorf("%w: centro %s", domain.ErrLockTimeout, facilityID)
		}
		return fmt.Errorf("lock center: %w", err)
	}

	if err := fn(NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// lockTimeoutStatement SET LOCAL no admite parámetros; el valor se formatea en milisegundos.
func lockTimeoutStatement(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", ms)
}
