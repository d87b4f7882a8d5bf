package reconciliation

import "github.com/jhoicas/conciliacion-api/internal/domain/entity"

// ExpectedClosing calcula el cierre esperado de una planilla:
//
//	apertura + ingresos − Σ ventas por canal − descarte − consumo interno (si aplica)
//
// No se recorta en cero: un esperado negativo delata un error de carga aguas arriba.
func ExpectedClosing(rec *entity.StockMovementRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	expected := rec.OpeningQty + rec.IncomingQty - rec.TotalSales() - rec.DiscardedQty
	if rec.HasInternalConsumption {
		expected -= rec.InternalConsumptionQty
	}
	return expected, nil
}
