package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

var _ repository.StockSheetRepository = (*StockSheetRepo)(nil)
var _ repository.CashClosingRepository = (*CashClosingRepo)(nil)

// StockSheetRepo planillas de stock. La conciliación solo lee; Insert lo usan la carga y los tests.
type StockSheetRepo struct {
	q Querier
}

// NewStockSheetRepository construye el adaptador de planillas.
func NewStockSheetRepository(q Querier) *StockSheetRepo {
	return &StockSheetRepo{q: q}
}

// Insert guarda una fila de planilla.
func (r *StockSheetRepo) Insert(ctx context.Context, rec *entity.StockMovementRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO stock_sheets (date, location_id, shift, product_id, product_name,
			opening_qty, incoming_qty, sales_local, sales_mercadopago, sales_pedidosya, sales_rappi,
			discarded_qty, internal_consumption_qty, has_internal_consumption, closing_qty_actual, unit_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		entity.NormalizeDate(rec.Date), rec.LocationID, string(rec.Shift), rec.ProductID, rec.ProductName,
		rec.OpeningQty, rec.IncomingQty,
		rec.SalesByChannel[entity.ChannelLocal], rec.SalesByChannel[entity.ChannelMercadoPago],
		rec.SalesByChannel[entity.ChannelPedidosYa], rec.SalesByChannel[entity.ChannelRappi],
		rec.DiscardedQty, rec.InternalConsumptionQty, rec.HasInternalConsumption, rec.ClosingQtyActual, rec.UnitValue,
	)
	if err != nil {
		return fmt.Errorf("insert stock sheet: %w", err)
	}
	return nil
}

// ListByKey filas de planilla de la clave ordenadas por producto.
func (r *StockSheetRepo) ListByKey(ctx context.Context, key entity.DiscrepancyKey) ([]*entity.StockMovementRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT date, location_id, shift, product_id, product_name,
			opening_qty, incoming_qty, sales_local, sales_mercadopago, sales_pedidosya, sales_rappi,
			discarded_qty, internal_consumption_qty, has_internal_consumption, closing_qty_actual, unit_value
		FROM stock_sheets
		WHERE date = $1 AND location_id = $2 AND shift = $3
		ORDER BY product_id`, keyArgs(key)...)
	if err != nil {
		return nil, fmt.Errorf("list stock sheets: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovementRecord
	for rows.Next() {
		var (
			rec                         entity.StockMovementRecord
			shift                       string
			local, mp, pedidosya, rappi int64
		)
		if err := rows.Scan(
			&rec.Date, &rec.LocationID, &shift, &rec.ProductID, &rec.ProductName,
			&rec.OpeningQty, &rec.IncomingQty, &local, &mp, &pedidosya, &rappi,
			&rec.DiscardedQty, &rec.InternalConsumptionQty, &rec.HasInternalConsumption,
			&rec.ClosingQtyActual, &rec.UnitValue,
		); err != nil {
			return nil, fmt.Errorf("scan stock sheet: %w", err)
		}
		rec.Date = dateUTC(rec.Date)
		rec.Shift = entity.Shift(shift)
		rec.SalesByChannel = map[entity.SalesChannel]int64{
			entity.ChannelLocal:       local,
			entity.ChannelMercadoPago: mp,
			entity.ChannelPedidosYa:   pedidosya,
			entity.ChannelRappi:       rappi,
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// CashClosingRepo cierres de caja.
type CashClosingRepo struct {
	q Querier
}

// NewCashClosingRepository construye el adaptador de cierres.
func NewCashClosingRepository(q Querier) *CashClosingRepo {
	return &CashClosingRepo{q: q}
}

// Insert guarda un cierre de caja.
func (r *CashClosingRepo) Insert(ctx context.Context, c *entity.CashRegisterClosing) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_closings (date, location_id, shift, register_index, expected_amount, actual_amount)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entity.NormalizeDate(c.Date), c.LocationID, string(c.Shift), c.RegisterIndex, c.ExpectedAmount, c.ActualAmount,
	)
	if err != nil {
		return fmt.Errorf("insert cash closing: %w", err)
	}
	return nil
}

// ListByKey cierres de la clave ordenados por caja.
func (r *CashClosingRepo) ListByKey(ctx context.Context, key entity.DiscrepancyKey) ([]*entity.CashRegisterClosing, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id::text, date, location_id, shift, register_index, expected_amount, actual_amount
		FROM cash_closings
		WHERE date = $1 AND location_id = $2 AND shift = $3
		ORDER BY register_index`, keyArgs(key)...)
	if err != nil {
		return nil, fmt.Errorf("list cash closings: %w", err)
	}
	defer rows.Close()

	var list []*entity.CashRegisterClosing
	for rows.Next() {
		var (
			c        entity.CashRegisterClosing
			shift    string
			register int16
		)
		if err := rows.Scan(&c.ID, &c.Date, &c.LocationID, &shift, &register, &c.ExpectedAmount, &c.ActualAmount); err != nil {
			return nil, fmt.Errorf("scan cash closing: %w", err)
		}
		c.Date = dateUTC(c.Date)
		c.Shift = entity.Shift(shift)
		c.RegisterIndex = int(register)
		list = append(list, &c)
	}
	return list, rows.Err()
}
