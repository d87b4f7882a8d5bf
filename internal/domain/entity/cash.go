package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
)

// CashRegisterClosing cierre de caja de origen: esperado según ventas registradas, real según arqueo.
type CashRegisterClosing struct {
	ID             string
	Date           time.Time
	LocationID     int64
	Shift          Shift
	RegisterIndex  int // 0 o 1 (locales con dos cajas)
	ExpectedAmount decimal.Decimal
	ActualAmount   decimal.Decimal
}

// Validate verifica el cierre antes de clasificarlo.
func (c *CashRegisterClosing) Validate() error {
	if c.RegisterIndex != 0 && c.RegisterIndex != 1 {
		return domain.Invalid("índice de caja inválido %d", c.RegisterIndex)
	}
	if c.ExpectedAmount.IsNegative() || c.ActualAmount.IsNegative() {
		return domain.Invalid("caja %d: montos negativos", c.RegisterIndex)
	}
	return nil
}

// CashDiscrepancy diferencia de caja por fecha, local, turno y caja.
// Forced marca filas escritas para dejar constancia de "conciliado sin diferencias".
type CashDiscrepancy struct {
	ID                string
	Date              time.Time
	LocationID        int64
	Shift             Shift
	RegisterIndex     int
	ExpectedAmount    decimal.Decimal
	ActualAmount      decimal.Decimal
	DifferenceAmount  decimal.Decimal
	DifferencePercent decimal.Decimal
	Severity          Severity
	Forced            bool
	CreatedAt         time.Time
}

// Key clave de generación a la que pertenece la fila.
func (d *CashDiscrepancy) Key() DiscrepancyKey {
	return NewDiscrepancyKey(d.Date, d.LocationID, d.Shift)
}

// Validate verifica la fila en el borde de almacenamiento.
func (d *CashDiscrepancy) Validate() error {
	switch {
	case d.LocationID <= 0:
		return domain.Invalid("diferencia de caja sin local")
	case !d.Shift.Valid():
		return domain.Invalid("diferencia de caja con turno inválido %q", d.Shift)
	case d.RegisterIndex != 0 && d.RegisterIndex != 1:
		return domain.Invalid("diferencia de caja con índice %d", d.RegisterIndex)
	case !d.Severity.Valid():
		return domain.Invalid("diferencia de caja con severidad inválida %q", d.Severity)
	case !d.DifferenceAmount.Equal(d.ActualAmount.Sub(d.ExpectedAmount)):
		return domain.Invalid("diferencia de caja inconsistente (caja %d)", d.RegisterIndex)
	}
	return nil
}

// LocationCashDiscrepancy vista por local: suma de las cajas del turno.
type LocationCashDiscrepancy struct {
	Date             time.Time
	LocationID       int64
	Registers        []*CashDiscrepancy
	DifferenceAmount decimal.Decimal
	Severity         Severity
}
