package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

// ClassifyCash compara el arqueo contra lo esperado por ventas registradas.
// Con esperado 0 el porcentaje queda en 0 pero el monto absoluto se informa igual.
func ClassifyCash(c *entity.CashRegisterClosing, th Thresholds) (*entity.CashDiscrepancy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	diff := c.ActualAmount.Sub(c.ExpectedAmount)
	pct := decimal.Zero
	if !c.ExpectedAmount.IsZero() {
		pct = diff.Div(c.ExpectedAmount).Mul(hundred).Round(2)
	}
	return &entity.CashDiscrepancy{
		Date:              entity.NormalizeDate(c.Date),
		LocationID:        c.LocationID,
		Shift:             c.Shift,
		RegisterIndex:     c.RegisterIndex,
		ExpectedAmount:    c.ExpectedAmount,
		ActualAmount:      c.ActualAmount,
		DifferenceAmount:  diff,
		DifferencePercent: pct,
		Severity:          CashSeverity(diff, th),
	}, nil
}

// CashSeverity: |$| > alto → high; |$| > alerta → medium; resto → none.
func CashSeverity(diff decimal.Decimal, th Thresholds) entity.Severity {
	abs := diff.Abs()
	switch {
	case abs.GreaterThan(th.CashHighAmount):
		return entity.SeverityHigh
	case abs.GreaterThan(th.CashAlertAmount):
		return entity.SeverityMedium
	}
	return entity.SeverityNone
}

// CombineRegisters arma la vista por local: suma las diferencias de cada caja y toma la
// severidad máxima (el local es high si cualquiera de sus cajas lo es).
// Devuelve nil si no hay filas.
func CombineRegisters(regs []*entity.CashDiscrepancy) *entity.LocationCashDiscrepancy {
	if len(regs) == 0 {
		return nil
	}
	out := &entity.LocationCashDiscrepancy{
		Date:             regs[0].Date,
		LocationID:       regs[0].LocationID,
		Registers:        regs,
		DifferenceAmount: decimal.Zero,
		Severity:         entity.SeverityNone,
	}
	for _, r := range regs {
		out.DifferenceAmount = out.DifferenceAmount.Add(r.DifferenceAmount)
		out.Severity = entity.MaxSeverity(out.Severity, r.Severity)
	}
	return out
}
