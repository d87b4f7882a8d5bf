package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ClassifyStock compara el cierre real contra el esperado y asigna severidad.
// El porcentaje se redondea a 2 decimales antes de clasificar (es el valor que se muestra).
func ClassifyStock(rec *entity.StockMovementRecord, expected int64, th Thresholds) (*entity.StockDiscrepancy, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	diff := rec.ClosingQtyActual - expected
	pct := StockDifferencePercent(diff, expected)
	return &entity.StockDiscrepancy{
		Date:               entity.NormalizeDate(rec.Date),
		LocationID:         rec.LocationID,
		Shift:              rec.Shift,
		ProductID:          rec.ProductID,
		ProductName:        rec.ProductName,
		ExpectedClosingQty: expected,
		ActualClosingQty:   rec.ClosingQtyActual,
		DifferenceQty:      diff,
		DifferencePercent:  pct,
		UnitValue:          rec.UnitValue,
		MonetaryValue:      decimal.NewFromInt(diff).Mul(rec.UnitValue),
		Severity:           StockSeverity(pct, th),
	}, nil
}

// ReconcileStock agrega la planilla y la clasifica en un paso.
func ReconcileStock(rec *entity.StockMovementRecord, th Thresholds) (*entity.StockDiscrepancy, error) {
	expected, err := ExpectedClosing(rec)
	if err != nil {
		return nil, err
	}
	return ClassifyStock(rec, expected, th)
}

// StockDifferencePercent diferencia / esperado × 100 con 2 decimales; nil si esperado es 0.
func StockDifferencePercent(diff, expected int64) *decimal.Decimal {
	if expected == 0 {
		return nil
	}
	pct := decimal.NewFromInt(diff).Div(decimal.NewFromInt(expected)).Mul(hundred).Round(2)
	return &pct
}

// StockSeverity: |%| > alto → high; |%| > alerta → medium; resto o indefinido → none.
func StockSeverity(pct *decimal.Decimal, th Thresholds) entity.Severity {
	if pct == nil {
		return entity.SeverityNone
	}
	abs := pct.Abs()
	switch {
	case abs.GreaterThan(th.StockHighPercent):
		return entity.SeverityHigh
	case abs.GreaterThan(th.StockAlertPercent):
		return entity.SeverityMedium
	}
	return entity.SeverityNone
}
