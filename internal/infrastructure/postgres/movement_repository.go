package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `seq, id, center_id, recorded_at, families_in, families_out, individuals_in, individuals_out,
	children_count, senior_count, pwd_count, pregnant_count, lactating_count,
	vulnerable_total, running_individuals, running_families, reported_by, remarks, created_at`

// Append inserta la entrada; seq lo asigna la secuencia de la tabla.
func (r *MovementRepo) Append(ctx context.Context, e *entity.MovementEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO center_movements (id, center_id, recorded_at, families_in, families_out, individuals_in, individuals_out,
			children_count, senior_count, pwd_count, pregnant_count, lactating_count,
			vulnerable_total, running_individuals, running_families, reported_by, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.FacilityID, e.RecordedAt, e.FamiliesIn, e.FamiliesOut, e.IndividualsIn, e.IndividualsOut,
		e.Breakdown.Children, e.Breakdown.Seniors, e.Breakdown.PWD, e.Breakdown.Pregnant, e.Breakdown.Lactating,
		e.VulnerableTotal, e.RunningIndividuals, e.RunningFamilies, nullable(e.ReportedBy), nullable(e.Remarks), e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("append movement %s: entrada duplicada: %w", e.ID, err)
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetLatest última entrada del centro por (recorded_at desc, seq desc).
func (r *MovementRepo) GetLatest(ctx context.Context, facilityID string) (*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + `
		FROM center_movements WHERE center_id = $1
		ORDER BY recorded_at DESC, seq DESC LIMIT 1`
	e, err := scanMovement(r.q.QueryRow(ctx, query, facilityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest movement: %w", err)
	}
	return e, nil
}

// SumWindow suma entradas y salidas desde since (inclusive). COALESCE devuelve cero sin filas.
func (r *MovementRepo) SumWindow(ctx context.Context, facilityID string, since time.Time) (entity.FlowSums, error) {
	const query = `
	SELECT
	    COALESCE(SUM(individuals_in),  0) AS total_in,
	    COALESCE(SUM(individuals_out), 0) AS total_out
	FROM center_movements
	WHERE center_id   = $1
	  AND recorded_at >= $2`
	var in, out int64
	if err := r.q.QueryRow(ctx, query, facilityID, since).Scan(&in, &out); err != nil {
		return entity.FlowSums{}, fmt.Errorf("sum window: %w", err)
	}
	return entity.FlowSums{SumIn: int(in), SumOut: int(out)}, nil
}

// ListByFacility lista movimientos de un centro en un rango de fechas.
func (r *MovementRepo) ListByFacility(ctx context.Context, facilityID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM center_movements WHERE center_id = $1`
	args := []any{facilityID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND recorded_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND recorded_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY recorded_at DESC, seq DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.MovementEntry, 0)
	for rows.Next() {
		e, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var e entity.MovementEntry
	var reportedBy, remarks *string
	err := row.Scan(
		&e.Seq, &e.ID, &e.FacilityID, &e.RecordedAt,
		&e.FamiliesIn, &e.FamiliesOut, &e.IndividualsIn, &e.IndividualsOut,
		&e.Breakdown.Children, &e.Breakdown.Seniors, &e.Breakdown.PWD, &e.Breakdown.Pregnant, &e.Breakdown.Lactating,
		&e.VulnerableTotal, &e.RunningIndividuals, &e.RunningFamilies,
		&reportedBy, &remarks, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reportedBy != nil {
		e.ReportedBy = *reportedBy
	}
	if remarks != nil {
		e.Remarks = *remarks
	}
	return &e, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
