package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompensationStatus relación entre la diferencia de stock valorizada y la de caja.
type CompensationStatus string

const (
	CompensationBalanced             CompensationStatus = "balanced"
	CompensationCompensated          CompensationStatus = "compensated"
	CompensationPartiallyCompensated CompensationStatus = "partially_compensated"
	CompensationWeaklyCompensated    CompensationStatus = "weakly_compensated"
	CompensationSameDirection        CompensationStatus = "same_direction"
	CompensationCashOnly             CompensationStatus = "cash_only"
	CompensationStockOnly            CompensationStatus = "stock_only"
	CompensationUnknown              CompensationStatus = "unknown"
)

// Compensates indica si el estado es alguna de las variantes de compensación.
func (s CompensationStatus) Compensates() bool {
	switch s {
	case CompensationCompensated, CompensationPartiallyCompensated, CompensationWeaklyCompensated:
		return true
	}
	return false
}

// CompensationVerdict veredicto calculado al leer (no se persiste).
type CompensationVerdict struct {
	Date                   time.Time
	LocationID             int64
	Shift                  *Shift
	StockValue             decimal.Decimal
	CashValue              decimal.Decimal
	NetDifference          decimal.Decimal
	Status                 CompensationStatus
	CompensationPercentage decimal.Decimal
}
