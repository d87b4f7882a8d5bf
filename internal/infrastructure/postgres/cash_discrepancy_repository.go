package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

var _ repository.CashDiscrepancyRepository = (*CashDiscrepancyRepo)(nil)

// CashDiscrepancyRepo registro de diferencias de caja sobre PostgreSQL (usable con pool o tx).
type CashDiscrepancyRepo struct {
	q Querier
}

// NewCashDiscrepancyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashDiscrepancyRepository(q Querier) *CashDiscrepancyRepo {
	return &CashDiscrepancyRepo{q: q}
}

const cashDiscrepancyColumns = `id, date, location_id, shift, register_index,
	expected_amount, actual_amount, difference_amount, difference_percent,
	severity, forced, created_at`

// Create inserta una fila; (clave, caja) repetido devuelve domain.ErrAlreadyExists.
func (r *CashDiscrepancyRepo) Create(ctx context.Context, d *entity.CashDiscrepancy) error {
	if err := d.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO cash_discrepancies (` + cashDiscrepancyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		d.ID, entity.NormalizeDate(d.Date), d.LocationID, string(d.Shift), d.RegisterIndex,
		d.ExpectedAmount, d.ActualAmount, d.DifferenceAmount, d.DifferencePercent,
		string(d.Severity), d.Forced, d.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: caja %d en %s", domain.ErrAlreadyExists, d.RegisterIndex, d.Key())
		}
		return fmt.Errorf("insert cash discrepancy: %w", err)
	}
	return nil
}

// CountByKey cantidad de filas de la clave.
func (r *CashDiscrepancyRepo) CountByKey(ctx context.Context, key entity.DiscrepancyKey) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM cash_discrepancies WHERE date = $1 AND location_id = $2 AND shift = $3`,
		keyArgs(key)...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count cash discrepancies: %w", err)
	}
	return n, nil
}

// DeleteByKey borra las filas de la clave.
func (r *CashDiscrepancyRepo) DeleteByKey(ctx context.Context, key entity.DiscrepancyKey) (int64, error) {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM cash_discrepancies WHERE date = $1 AND location_id = $2 AND shift = $3`,
		keyArgs(key)...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete cash discrepancies: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// List filas que cumplen el filtro, fecha desc y creación desc.
func (r *CashDiscrepancyRepo) List(ctx context.Context, f entity.DiscrepancyFilter) ([]*entity.CashDiscrepancy, error) {
	where, args := filterClause(f)
	rows, err := r.q.Query(ctx, `SELECT `+cashDiscrepancyColumns+`
		FROM cash_discrepancies WHERE `+where+`
		ORDER BY date DESC, created_at DESC, register_index`, args...)
	if err != nil {
		return nil, fmt.Errorf("list cash discrepancies: %w", err)
	}
	defer rows.Close()

	var list []*entity.CashDiscrepancy
	for rows.Next() {
		d, err := scanCashDiscrepancy(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// LastDate fecha más reciente con filas para el local.
func (r *CashDiscrepancyRepo) LastDate(ctx context.Context, locationID int64) (*time.Time, error) {
	var last *time.Time
	if err := r.q.QueryRow(ctx,
		`SELECT MAX(date) FROM cash_discrepancies WHERE location_id = $1`, locationID,
	).Scan(&last); err != nil {
		return nil, fmt.Errorf("last cash discrepancy date: %w", err)
	}
	if last != nil {
		d := dateUTC(*last)
		last = &d
	}
	return last, nil
}

func scanCashDiscrepancy(row pgx.Row) (*entity.CashDiscrepancy, error) {
	var (
		d               entity.CashDiscrepancy
		shift, severity string
		register        int16
	)
	if err := row.Scan(
		&d.ID, &d.Date, &d.LocationID, &shift, &register,
		&d.ExpectedAmount, &d.ActualAmount, &d.DifferenceAmount, &d.DifferencePercent,
		&severity, &d.Forced, &d.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan cash discrepancy: %w", err)
	}
	d.Date = dateUTC(d.Date)
	d.Shift = entity.Shift(shift)
	d.Severity = entity.Severity(severity)
	d.RegisterIndex = int(register)
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("fila de caja %s corrupta: %w", d.ID, err)
	}
	return &d, nil
}
