// Package reconciliation orquesta la conciliación stock-caja: generación transaccional del
// registro de diferencias, análisis de compensación, consultas y reportes.
package reconciliation

import (
	"context"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción exclusiva para la clave, con repositorios
// del registro atados a esa tx. Commit si fn devuelve nil; Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, key entity.DiscrepancyKey, fn func(
		stockRepo repository.StockDiscrepancyRepository,
		cashRepo repository.CashDiscrepancyRepository,
	) error) error
}

// KeyLocker serializa generaciones de una misma clave antes de abrir la transacción.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ReportGenerator genera la representación PDF de una conciliación.
type ReportGenerator interface {
	GenerateReconciliationPDF(ctx context.Context, report *Report) ([]byte, error)
}
