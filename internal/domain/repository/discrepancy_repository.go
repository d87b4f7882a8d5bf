package repository

import (
	"context"
	"time"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

// StockDiscrepancyRepository puerto del registro de diferencias de stock.
// Usable fuera de transacción (lecturas) o atado a una tx (generación).
type StockDiscrepancyRepository interface {
	// Create inserta una fila; una fila repetida para (clave, producto) devuelve domain.ErrAlreadyExists.
	Create(ctx context.Context, d *entity.StockDiscrepancy) error
	CountByKey(ctx context.Context, key entity.DiscrepancyKey) (int, error)
	DeleteByKey(ctx context.Context, key entity.DiscrepancyKey) (int64, error)
	// List devuelve filas ordenadas por fecha desc y creación desc.
	List(ctx context.Context, filter entity.DiscrepancyFilter) ([]*entity.StockDiscrepancy, error)
	// LastDate fecha más reciente con filas para el local; nil si no hay ninguna.
	LastDate(ctx context.Context, locationID int64) (*time.Time, error)
}

// CashDiscrepancyRepository puerto del registro de diferencias de caja.
type CashDiscrepancyRepository interface {
	// Create inserta una fila; una fila repetida para (clave, caja) devuelve domain.ErrAlreadyExists.
	Create(ctx context.Context, d *entity.CashDiscrepancy) error
	CountByKey(ctx context.Context, key entity.DiscrepancyKey) (int, error)
	DeleteByKey(ctx context.Context, key entity.DiscrepancyKey) (int64, error)
	List(ctx context.Context, filter entity.DiscrepancyFilter) ([]*entity.CashDiscrepancy, error)
	LastDate(ctx context.Context, locationID int64) (*time.Time, error)
}
