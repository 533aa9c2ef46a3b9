package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

var _ repository.CenterRepository = (*CenterRepo)(nil)

// CenterRepo lectura del directorio de centros sobre PostgreSQL.
type CenterRepo struct {
	q Querier
}

// NewCenterRepository construye el adaptador.
func NewCenterRepository(q Querier) *CenterRepo {
	return &CenterRepo{q: q}
}

// GetByID obtiene un centro por ID; nil, nil si no existe.
func (r *CenterRepo) GetByID(ctx context.Context, id string) (*entity.EvacuationCenter, error) {
	query := `
		SELECT id, name, municipality, barangay, family_capacity_max, individual_capacity_max,
		       latitude, longitude, status, created_at, updated_at
		FROM evacuation_centers WHERE id = $1`
	var c entity.EvacuationCenter
	var families, individuals *int32
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Municipality, &c.Barangay, &families, &individuals,
		&c.Latitude, &c.Longitude, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get center: %w", err)
	}
	if families != nil {
		c.FamilyCapacityMax = int(*families)
	}
	if individuals != nil {
		c.IndividualCapacityMax = int(*individuals)
	}
	return &c, nil
}

// GetCapacity capacidad de individuos; NULL se reporta como 0.
func (r *CenterRepo) GetCapacity(ctx context.Context, id string) (int, error) {
	var capacity *int32
	err := r.q.QueryRow(ctx, `SELECT individual_capacity_max FROM evacuation_centers WHERE id = $1`, id).Scan(&capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get capacity: %w", err)
	}
	if capacity == nil {
		return 0, nil
	}
	return int(*capacity), nil
}

// Upsert crea o actualiza el centro por ID (carga del directorio).
func (r *CenterRepo) Upsert(ctx context.Context, c *entity.EvacuationCenter) error {
	query := `
		INSERT INTO evacuation_centers (id, name, municipality, barangay, family_capacity_max, individual_capacity_max,
			latitude, longitude, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			municipality = EXCLUDED.municipality,
			barangay = EXCLUDED.barangay,
			family_capacity_max = EXCLUDED.family_capacity_max,
			individual_capacity_max = EXCLUDED.individual_capacity_max,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			status = EXCLUDED.status,
			updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Municipality, c.Barangay, c.FamilyCapacityMax, c.IndividualCapacityMax,
		c.Latitude, c.Longitude, nonEmptyStatus(c.Status),
	)
	if err != nil {
		return fmt.Errorf("upsert center %s: %w", c.ID, err)
	}
	return nil
}

func nonEmptyStatus(s string) string {
	if s == "" {
		return entity.CenterStatusTemporary
	}
	return s
}
