package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
)

// StockDiscrepancy diferencia de stock de un producto para fecha, local y turno.
// DifferencePercent es nil cuando el cierre esperado es 0 (porcentaje indefinido).
type StockDiscrepancy struct {
	ID                 string
	Date               time.Time
	LocationID         int64
	Shift              Shift
	ProductID          string
	ProductName        string
	ExpectedClosingQty int64
	ActualClosingQty   int64
	DifferenceQty      int64
	DifferencePercent  *decimal.Decimal
	UnitValue          decimal.Decimal
	MonetaryValue      decimal.Decimal
	Severity           Severity
	CreatedAt          time.Time
}

// Key clave de generación a la que pertenece la fila.
func (d *StockDiscrepancy) Key() DiscrepancyKey {
	return NewDiscrepancyKey(d.Date, d.LocationID, d.Shift)
}

// Validate verifica la fila en el borde de almacenamiento (antes de insertar y al leer).
func (d *StockDiscrepancy) Validate() error {
	switch {
	case d.ProductID == "":
		return domain.Invalid("diferencia de stock sin producto")
	case d.LocationID <= 0:
		return domain.Invalid("diferencia de stock sin local")
	case !d.Shift.Valid():
		return domain.Invalid("diferencia de stock con turno inválido %q", d.Shift)
	case !d.Severity.Valid():
		return domain.Invalid("diferencia de stock con severidad inválida %q", d.Severity)
	case d.ActualClosingQty < 0:
		return domain.Invalid("diferencia de stock con cierre real negativo")
	case d.DifferenceQty != d.ActualClosingQty-d.ExpectedClosingQty:
		return domain.Invalid("diferencia de stock inconsistente para %s", d.ProductID)
	case d.ExpectedClosingQty == 0 && d.DifferencePercent != nil:
		return domain.Invalid("porcentaje definido con cierre esperado 0 para %s", d.ProductID)
	}
	return nil
}
