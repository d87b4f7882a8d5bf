package reconciliation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
)

func cierre(register int, expected, actual string) *entity.CashRegisterClosing {
	return &entity.CashRegisterClosing{
		Date:           time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		LocationID:     1,
		Shift:          entity.ShiftTarde,
		RegisterIndex:  register,
		ExpectedAmount: decimal.RequireFromString(expected),
		ActualAmount:   decimal.RequireFromString(actual),
	}
}

func TestClassifyCash_DiferenciaMenor(t *testing.T) {
	d, err := reconciliation.ClassifyCash(cierre(0, "10000", "10030"), reconciliation.DefaultThresholds())
	require.NoError(t, err)

	assert.True(t, d.DifferenceAmount.Equal(decimal.NewFromInt(30)))
	assert.True(t, d.DifferencePercent.Equal(decimal.RequireFromString("0.3")), "got %s", d.DifferencePercent)
	assert.Equal(t, entity.SeverityNone, d.Severity)
	assert.False(t, d.Severity.Alert())
}

func TestCashSeverity_Limites(t *testing.T) {
	th := reconciliation.DefaultThresholds()
	cases := []struct {
		diff string
		want entity.Severity
	}{
		{"5000.00", entity.SeverityNone},
		{"-5000.00", entity.SeverityNone},
		{"5000.01", entity.SeverityMedium},
		{"10000.00", entity.SeverityMedium},
		{"-10000.01", entity.SeverityHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, reconciliation.CashSeverity(decimal.RequireFromString(tc.diff), th), tc.diff)
	}
}

func TestClassifyCash_EsperadoCero(t *testing.T) {
	d, err := reconciliation.ClassifyCash(cierre(0, "0", "7000"), reconciliation.DefaultThresholds())
	require.NoError(t, err)
	assert.True(t, d.DifferencePercent.IsZero())
	assert.True(t, d.DifferenceAmount.Equal(decimal.NewFromInt(7000)))
	assert.Equal(t, entity.SeverityMedium, d.Severity)
}

func TestClassifyCash_IndiceInvalido(t *testing.T) {
	_, err := reconciliation.ClassifyCash(cierre(2, "1", "1"), reconciliation.DefaultThresholds())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCombineRegisters_DosCajas(t *testing.T) {
	th := reconciliation.DefaultThresholds()
	a, err := reconciliation.ClassifyCash(cierre(0, "50000", "38000"), th) // −12000 high
	require.NoError(t, err)
	b, err := reconciliation.ClassifyCash(cierre(1, "40000", "49000"), th) // +9000 medium
	require.NoError(t, err)

	loc := reconciliation.CombineRegisters([]*entity.CashDiscrepancy{a, b})
	require.NotNil(t, loc)
	assert.True(t, loc.DifferenceAmount.Equal(decimal.NewFromInt(-3000)))
	assert.Equal(t, entity.SeverityHigh, loc.Severity, "high si cualquiera de las cajas es high")
	assert.Len(t, loc.Registers, 2)

	assert.Nil(t, reconciliation.CombineRegisters(nil))
}
