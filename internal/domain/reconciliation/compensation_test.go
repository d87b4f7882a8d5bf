package reconciliation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
)

func analizar(t *testing.T, stock, cash string) reconciliation.Compensation {
	t.Helper()
	c, err := reconciliation.AnalyzeCompensation(
		decimal.RequireFromString(stock), decimal.RequireFromString(cash), reconciliation.DefaultThresholds())
	require.NoError(t, err)
	return c
}

func TestAnalyzeCompensation_Estados(t *testing.T) {
	cases := []struct {
		stock, cash string
		want        entity.CompensationStatus
	}{
		{"0", "0", entity.CompensationBalanced},
		{"0.09", "-0.09", entity.CompensationBalanced},
		{"-100", "100", entity.CompensationCompensated},
		{"100", "-100", entity.CompensationCompensated},
		{"-480", "500", entity.CompensationCompensated},
		{"-450", "500", entity.CompensationPartiallyCompensated}, // ratio 0,10
		{"-400", "500", entity.CompensationWeaklyCompensated},    // ratio 0,20 exacto
		{"-50", "-50", entity.CompensationSameDirection},
		{"30", "12", entity.CompensationSameDirection},
		{"0", "250", entity.CompensationCashOnly},
		{"0.05", "-250", entity.CompensationCashOnly}, // residuo de stock dentro del margen
		{"-800", "0", entity.CompensationStockOnly},
	}
	for _, tc := range cases {
		got := analizar(t, tc.stock, tc.cash)
		assert.Equal(t, tc.want, got.Status, "stock=%s caja=%s", tc.stock, tc.cash)
	}
}

func TestAnalyzeCompensation_Simetria(t *testing.T) {
	a := analizar(t, "-100", "100")
	b := analizar(t, "100", "-100")
	assert.Equal(t, a.Status, b.Status)
	assert.True(t, a.Ratio.IsZero())
	assert.True(t, a.Percentage.Equal(decimal.NewFromInt(100)))
	assert.True(t, a.Percentage.Equal(b.Percentage))
}

func TestAnalyzeCompensation_FaltanteStockSobranteCaja(t *testing.T) {
	c := analizar(t, "-480", "500")
	assert.Equal(t, entity.CompensationCompensated, c.Status)
	assert.True(t, c.Ratio.Equal(decimal.RequireFromString("0.04")), "ratio %s", c.Ratio)
	assert.True(t, c.Percentage.Equal(decimal.NewFromInt(96)), "porcentaje %s", c.Percentage)
	assert.True(t, c.NetDifference.Equal(decimal.NewFromInt(20)))
}

func TestAnalyzeCompensation_PorcentajeSoloEnEstadosCompensados(t *testing.T) {
	assert.True(t, analizar(t, "-50", "-50").Percentage.IsZero())
	assert.True(t, analizar(t, "0", "250").Percentage.IsZero())
	assert.True(t, analizar(t, "-400", "500").Percentage.Equal(decimal.NewFromInt(80)))
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, reconciliation.DefaultThresholds().Validate())

	th := reconciliation.DefaultThresholds()
	th.CompensationMargin = decimal.Zero
	assert.Error(t, th.Validate())

	th = reconciliation.DefaultThresholds()
	th.CashHighAmount = decimal.NewFromInt(100)
	assert.Error(t, th.Validate())
}
