package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

const (
	lockKeyPrefix     = "evac:center-lock:"
	defaultRetryDelay = 25 * time.Millisecond
	releaseTimeout    = 2 * time.Second
)

// Solo borra la llave si sigue siendo nuestra (el TTL pudo vencer y otro proceso tomarla).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var _ occupancy.TxRunner = (*LockRunner)(nil)

// LockRunner serializa escritores de un mismo centro entre réplicas con una llave Redis
// (SET NX PX) y delega la transacción al runner interno.
type LockRunner struct {
	client     *redis.Client
	inner      occupancy.TxRunner
	timeout    time.Duration
	ttl        time.Duration
	retryDelay time.Duration
	log        zerolog.Logger
}

// Option configura un LockRunner.
type Option func(*LockRunner)

// WithRetryDelay cambia la pausa entre intentos de adquisición.
func WithRetryDelay(d time.Duration) Option {
	return func(r *LockRunner) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

// WithLogger asigna el logger para fallos al liberar la llave.
func WithLogger(log zerolog.Logger) Option {
	return func(r *LockRunner) {
		r.log = log.With().Str("component", "redis_lock").Logger()
	}
}

// NewLockRunner envuelve inner. timeout acota la espera total (llave más runner interno); ttl la vida máxima de la llave.
func NewLockRunner(client *redis.Client, inner occupancy.TxRunner, timeout, ttl time.Duration, opts ...Option) *LockRunner {
	r := &LockRunner{
		client:     client,
		inner:      inner,
		timeout:    timeout,
		ttl:        ttl,
		retryDelay: defaultRetryDelay,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RunLocked adquiere la llave del centro, ejecuta inner.RunLocked y libera la llave.
// El runner interno solo dispone del tiempo que no se gastó esperando la llave.
func (r *LockRunner) RunLocked(ctx context.Context, facilityID string, fn func(movRepo repository.MovementRepository) error) error {
	key := lockKeyPrefix + facilityID
	token := uuid.NewString()
	budget := occupancy.LockBudget(ctx, r.timeout)
	start := time.Now()

	if err := r.acquire(ctx, key, token, facilityID, budget); err != nil {
		return err
	}
	defer r.release(ctx, key, token)

	remaining := budget - time.Since(start)
	if remaining <= 0 {
		return fmt.Errorf("%w: centro %s", domain.ErrLockTimeout, facilityID)
	}
	return r.inner.RunLocked(occupancy.WithLockBudget(ctx, remaining), facilityID, fn)
}

func (r *LockRunner) acquire(ctx context.Context, key, token, facilityID string, budget time.Duration) error {
	acquireCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	for {
		ok, err := r.client.SetNX(acquireCtx, key, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if acquireCtx.Err() != nil {
				return fmt.Errorf("%w: centro %s", domain.ErrLockTimeout, facilityID)
			}
			return fmt.Errorf("redis lock %s: %w", facilityID, err)
		}
		if ok {
			return nil
		}

		timer := time.NewTimer(r.retryDelay)
		select {
		case <-acquireCtx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: centro %s", domain.ErrLockTimeout, facilityID)
		case <-timer.C:
		}
	}
}

func (r *LockRunner) release(ctx context.Context, key, token string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo; vencerá por TTL")
	}
}
