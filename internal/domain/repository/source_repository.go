package repository

import (
	"context"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

// StockSheetRepository fuente de planillas de stock (solo lectura para la conciliación).
// Devuelve lista vacía, no error, cuando todavía no se cargó nada para la clave.
type StockSheetRepository interface {
	ListByKey(ctx context.Context, key entity.DiscrepancyKey) ([]*entity.StockMovementRecord, error)
}

// CashClosingRepository fuente de cierres de caja (solo lectura para la conciliación).
// Lista vacía significa "sin cierres cargados", distinto de cierres que cuadran.
type CashClosingRepository interface {
	ListByKey(ctx context.Context, key entity.DiscrepancyKey) ([]*entity.CashRegisterClosing, error)
}
