// Package reconciliation contiene los servicios de dominio puros de la conciliación stock-caja:
// agregación de planillas, clasificación de diferencias y análisis de compensación.
// Ninguna función de este paquete hace I/O ni guarda estado.
package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
)

// Thresholds umbrales de clasificación. Se inyectan desde configuración.
type Thresholds struct {
	StockAlertPercent  decimal.Decimal // |%| por encima alerta (medium)
	StockHighPercent   decimal.Decimal // |%| por encima es high
	CashAlertAmount    decimal.Decimal // |$| por encima alerta (medium)
	CashHighAmount     decimal.Decimal // |$| por encima es high
	CompensationMargin decimal.Decimal // |valor| por debajo se considera cero
	CompensatedRatio   decimal.Decimal // ratio por debajo: compensated
	PartialRatio       decimal.Decimal // ratio por debajo: partially_compensated
}

// DefaultThresholds valores operativos históricos: 2%, 5%, $5000, $10000, margen 0,10, ratios 0,05/0,20.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StockAlertPercent:  decimal.NewFromInt(2),
		StockHighPercent:   decimal.NewFromInt(5),
		CashAlertAmount:    decimal.NewFromInt(5000),
		CashHighAmount:     decimal.NewFromInt(10000),
		CompensationMargin: decimal.RequireFromString("0.10"),
		CompensatedRatio:   decimal.RequireFromString("0.05"),
		PartialRatio:       decimal.RequireFromString("0.20"),
	}
}

// Validate exige umbrales coherentes. El margen debe ser positivo: con margen 0 un valor
// exactamente cero no tendría signo y el análisis de compensación quedaría incompleto.
func (t Thresholds) Validate() error {
	if t.StockAlertPercent.IsNegative() || t.StockHighPercent.LessThan(t.StockAlertPercent) {
		return domain.Invalid("umbrales de stock: se requiere 0 <= alerta <= alto")
	}
	if t.CashAlertAmount.IsNegative() || t.CashHighAmount.LessThan(t.CashAlertAmount) {
		return domain.Invalid("umbrales de caja: se requiere 0 <= alerta <= alto")
	}
	if !t.CompensationMargin.IsPositive() {
		return domain.Invalid("margen de compensación debe ser positivo")
	}
	if t.CompensatedRatio.IsNegative() || t.PartialRatio.LessThan(t.CompensatedRatio) {
		return domain.Invalid("ratios de compensación: se requiere 0 <= compensado <= parcial")
	}
	return nil
}
