package reconciliation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

// Compensation resultado del análisis de compensación.
type Compensation struct {
	Status        entity.CompensationStatus
	NetDifference decimal.Decimal // stock + caja
	Ratio         decimal.Decimal // |stock + caja| / max(|stock|, |caja|); solo con signos opuestos
	Percentage    decimal.Decimal // 100 − ratio×100; solo en estados compensados
}

// AnalyzeCompensation clasifica la relación entre la diferencia de stock valorizada y la de caja.
//
// Un faltante de stock con sobrante de caja de magnitud similar suele ser un mismo hecho
// medido dos veces (p. ej. consumo sin registrar), por eso se informa como un único incidente.
// Los valores dentro del margen cuentan como cero antes de comparar signos.
func AnalyzeCompensation(stockValue, cashValue decimal.Decimal, th Thresholds) (Compensation, error) {
	out := Compensation{
		NetDifference: stockValue.Add(cashValue),
		Ratio:         decimal.Zero,
		Percentage:    decimal.Zero,
	}
	stockZero := stockValue.Abs().LessThan(th.CompensationMargin)
	cashZero := cashValue.Abs().LessThan(th.CompensationMargin)

	switch {
	case stockZero && cashZero:
		out.Status = entity.CompensationBalanced
		return out, nil

	case !stockZero && !cashZero && stockValue.Sign() != cashValue.Sign():
		maxMag := decimal.Max(stockValue.Abs(), cashValue.Abs())
		out.Ratio = out.NetDifference.Abs().Div(maxMag)
		out.Percentage = hundred.Sub(out.Ratio.Mul(hundred)).Round(2)
		switch {
		case out.Ratio.LessThan(th.CompensatedRatio):
			out.Status = entity.CompensationCompensated
		case out.Ratio.LessThan(th.PartialRatio):
			out.Status = entity.CompensationPartiallyCompensated
		default:
			out.Status = entity.CompensationWeaklyCompensated
		}
		return out, nil

	case !stockZero && !cashZero:
		out.Status = entity.CompensationSameDirection
		return out, nil

	case stockZero:
		out.Status = entity.CompensationCashOnly
		return out, nil

	case cashZero:
		out.Status = entity.CompensationStockOnly
		return out, nil
	}

	out.Status = entity.CompensationUnknown
	return out, fmt.Errorf("%w: stock=%s caja=%s", domain.ErrComputationAssertion, stockValue, cashValue)
}
