package reconciliation_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recon "github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
)

func newCompensation(f *fixture) *recon.CompensationUseCase {
	return recon.NewCompensationUseCase(f.ledger.Stock(), f.ledger.Cash(), f.src.Locations(), reconciliation.DefaultThresholds(), zerolog.Nop())
}

func TestCompensation_FaltanteCompensadoPorSobrante(t *testing.T) {
	f := newFixture(t)
	f.cargarMedialunas(localUnaCaja, entity.ShiftManana)
	f.cargarCierre(localUnaCaja, entity.ShiftManana, 0, "10000", "10500")
	ctx := context.Background()
	_, err := f.uc.Generate(ctx, recon.GenerateInput{Date: dia, LocationID: localUnaCaja, Shift: entity.ShiftManana})
	require.NoError(t, err)

	v, err := newCompensation(f).Analyze(ctx, dia, localUnaCaja, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.CompensationCompensated, v.Status)
	assert.True(t, v.StockValue.Equal(decimal.NewFromInt(-480)))
	assert.True(t, v.CashValue.Equal(decimal.NewFromInt(500)))
	assert.True(t, v.NetDifference.Equal(decimal.NewFromInt(20)))
	assert.True(t, v.CompensationPercentage.Equal(decimal.NewFromInt(96)), "got %s", v.CompensationPercentage)
}

func TestCompensation_PorTurno(t *testing.T) {
	f := newFixture(t)
	f.cargarMedialunas(localUnaCaja, entity.ShiftManana)
	f.cargarCierre(localUnaCaja, entity.ShiftTarde, 0, "10000", "10500")
	ctx := context.Background()
	for _, s := range []entity.Shift{entity.ShiftManana, entity.ShiftTarde} {
		_, err := f.uc.Generate(ctx, recon.GenerateInput{Date: dia, LocationID: localUnaCaja, Shift: s})
		require.NoError(t, err)
	}

	manana := entity.ShiftManana
	v, err := newCompensation(f).Analyze(ctx, dia, localUnaCaja, &manana)
	require.NoError(t, err)
	assert.Equal(t, entity.CompensationStockOnly, v.Status)

	tarde := entity.ShiftTarde
	v, err = newCompensation(f).Analyze(ctx, dia, localUnaCaja, &tarde)
	require.NoError(t, err)
	assert.Equal(t, entity.CompensationCashOnly, v.Status)
}

func TestCompensation_SinFilasBalanceado(t *testing.T) {
	f := newFixture(t)
	v, err := newCompensation(f).Analyze(context.Background(), dia, localUnaCaja, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.CompensationBalanced, v.Status)
}

func TestCompensation_LocalInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := newCompensation(f).Analyze(context.Background(), dia, 42, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
}

func TestCompensation_AnalyzeValues(t *testing.T) {
	f := newFixture(t)
	v, err := newCompensation(f).AnalyzeValues(dia, localUnaCaja, nil, decimal.NewFromInt(-1000), decimal.NewFromInt(-300))
	require.NoError(t, err)
	assert.Equal(t, entity.CompensationSameDirection, v.Status)
	assert.True(t, v.CompensationPercentage.IsZero())
}
