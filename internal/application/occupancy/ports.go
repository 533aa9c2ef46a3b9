package occupancy

import (
	"context"
	"time"

	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una sección exclusiva por centro, pasando el repositorio
// atado a esa sección. Escritores de centros distintos no se bloquean entre sí.
// Si el bloqueo no se obtiene dentro del tiempo configurado devuelve domain.ErrLockTimeout.
type TxRunner interface {
	RunLocked(ctx context.Context, facilityID string, fn func(movRepo repository.MovementRepository) error) error
}

type lockBudgetKey struct{}

// WithLockBudget limita la espera de los runners anidados al tiempo que queda.
// Un runner que envuelve a otro (Redis sobre PostgreSQL) pasa el sobrante de su propia
// espera, así la espera total no supera el timeout configurado.
func WithLockBudget(ctx context.Context, remaining time.Duration) context.Context {
	if current, ok := ctx.Value(lockBudgetKey{}).(time.Duration); ok && current < remaining {
		remaining = current
	}
	return context.WithValue(ctx, lockBudgetKey{}, remaining)
}

// LockBudget devuelve la espera efectiva del runner: configured, o el sobrante del contexto si es menor.
func LockBudget(ctx context.Context, configured time.Duration) time.Duration {
	if remaining, ok := ctx.Value(lockBudgetKey{}).(time.Duration); ok && remaining < configured {
		return remaining
	}
	return configured
}

// Clock fuente de tiempo inyectable.
type Clock interface {
	Now() time.Time
}

// SystemClock reloj real.
type SystemClock struct{}

// Now devuelve la hora actual.
func (SystemClock) Now() time.Time { return time.Now() }

// Observer recibe eventos del libro y del motor de riesgo (métricas).
type Observer interface {
	MovementRecorded(facilityID string)
	LockWait(d time.Duration)
	LockTimeout(facilityID string)
	RiskAssessed(level occupancy.Level)
}

type noopObserver struct{}

func (noopObserver) MovementRecorded(string)      {}
func (noopObserver) LockWait(time.Duration)       {}
func (noopObserver) LockTimeout(string)           {}
func (noopObserver) RiskAssessed(occupancy.Level) {}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return noopObserver{}
	}
	return o
}
