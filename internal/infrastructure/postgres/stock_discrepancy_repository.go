package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

var _ repository.StockDiscrepancyRepository = (*StockDiscrepancyRepo)(nil)

// StockDiscrepancyRepo registro de diferencias de stock sobre PostgreSQL (usable con pool o tx).
type StockDiscrepancyRepo struct {
	q Querier
}

// NewStockDiscrepancyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockDiscrepancyRepository(q Querier) *StockDiscrepancyRepo {
	return &StockDiscrepancyRepo{q: q}
}

const stockDiscrepancyColumns = `id, date, location_id, shift, product_id, product_name,
	expected_closing_qty, actual_closing_qty, difference_qty, difference_percent,
	unit_value, monetary_value, severity, created_at`

// Create inserta una fila; (clave, producto) repetido devuelve domain.ErrAlreadyExists.
func (r *StockDiscrepancyRepo) Create(ctx context.Context, d *entity.StockDiscrepancy) error {
	if err := d.Validate(); err != nil {
		return err
	}
	pct := decimal.NullDecimal{}
	if d.DifferencePercent != nil {
		pct = decimal.NewNullDecimal(*d.DifferencePercent)
	}
	query := `INSERT INTO stock_discrepancies (` + stockDiscrepancyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		d.ID, entity.NormalizeDate(d.Date), d.LocationID, string(d.Shift), d.ProductID, d.ProductName,
		d.ExpectedClosingQty, d.ActualClosingQty, d.DifferenceQty, pct,
		d.UnitValue, d.MonetaryValue, string(d.Severity), d.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: producto %s en %s", domain.ErrAlreadyExists, d.ProductID, d.Key())
		}
		return fmt.Errorf("insert stock discrepancy: %w", err)
	}
	return nil
}

// CountByKey cantidad de filas de la clave.
func (r *StockDiscrepancyRepo) CountByKey(ctx context.Context, key entity.DiscrepancyKey) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_discrepancies WHERE date = $1 AND location_id = $2 AND shift = $3`,
		keyArgs(key)...,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count stock discrepancies: %w", err)
	}
	return n, nil
}

// DeleteByKey borra las filas de la clave.
func (r *StockDiscrepancyRepo) DeleteByKey(ctx context.Context, key entity.DiscrepancyKey) (int64, error) {
	cmd, err := r.q.Exec(ctx,
		`DELETE FROM stock_discrepancies WHERE date = $1 AND location_id = $2 AND shift = $3`,
		keyArgs(key)...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete stock discrepancies: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// List filas que cumplen el filtro, fecha desc y creación desc.
func (r *StockDiscrepancyRepo) List(ctx context.Context, f entity.DiscrepancyFilter) ([]*entity.StockDiscrepancy, error) {
	where, args := filterClause(f)
	rows, err := r.q.Query(ctx, `SELECT `+stockDiscrepancyColumns+`
		FROM stock_discrepancies WHERE `+where+`
		ORDER BY date DESC, created_at DESC, product_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock discrepancies: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockDiscrepancy
	for rows.Next() {
		d, err := scanStockDiscrepancy(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// LastDate fecha más reciente con filas para el local.
func (r *StockDiscrepancyRepo) LastDate(ctx context.Context, locationID int64) (*time.Time, error) {
	var last *time.Time
	if err := r.q.QueryRow(ctx,
		`SELECT MAX(date) FROM stock_discrepancies WHERE location_id = $1`, locationID,
	).Scan(&last); err != nil {
		return nil, fmt.Errorf("last stock discrepancy date: %w", err)
	}
	if last != nil {
		d := dateUTC(*last)
		last = &d
	}
	return last, nil
}

func scanStockDiscrepancy(row pgx.Row) (*entity.StockDiscrepancy, error) {
	var (
		d               entity.StockDiscrepancy
		shift, severity string
		pct             decimal.NullDecimal
	)
	if err := row.Scan(
		&d.ID, &d.Date, &d.LocationID, &shift, &d.ProductID, &d.ProductName,
		&d.ExpectedClosingQty, &d.ActualClosingQty, &d.DifferenceQty, &pct,
		&d.UnitValue, &d.MonetaryValue, &severity, &d.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan stock discrepancy: %w", err)
	}
	d.Date = dateUTC(d.Date)
	d.Shift = entity.Shift(shift)
	d.Severity = entity.Severity(severity)
	if pct.Valid {
		p := pct.Decimal
		d.DifferencePercent = &p
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("fila de stock %s corrupta: %w", d.ID, err)
	}
	return &d, nil
}
