package memory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
	"github.com/jhoicas/conciliacion-api/internal/infrastructure/memory"
)

var dia = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func filaStock(product string, date time.Time, created time.Time) *entity.StockDiscrepancy {
	return &entity.StockDiscrepancy{
		ID:                 product,
		Date:               date,
		LocationID:         1,
		Shift:              entity.ShiftManana,
		ProductID:          product,
		ExpectedClosingQty: 10,
		ActualClosingQty:   8,
		DifferenceQty:      -2,
		MonetaryValue:      decimal.NewFromInt(-200),
		Severity:           entity.SeverityHigh,
		CreatedAt:          created,
	}
}

func filaCaja(register int) *entity.CashDiscrepancy {
	return &entity.CashDiscrepancy{
		Date:             dia,
		LocationID:       1,
		Shift:            entity.ShiftManana,
		RegisterIndex:    register,
		ExpectedAmount:   decimal.NewFromInt(1000),
		ActualAmount:     decimal.NewFromInt(900),
		DifferenceAmount: decimal.NewFromInt(-100),
		Severity:         entity.SeverityNone,
	}
}

func TestLedger_CreateDuplicado(t *testing.T) {
	ctx := context.Background()
	l := memory.NewLedger()
	require.NoError(t, l.Stock().Create(ctx, filaStock("p1", dia, dia)))
	err := l.Stock().Create(ctx, filaStock("p1", dia, dia))
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	require.NoError(t, l.Cash().Create(ctx, filaCaja(0)))
	assert.ErrorIs(t, l.Cash().Create(ctx, filaCaja(0)), domain.ErrAlreadyExists)
}

func TestLedger_ListOrdenadoYFiltrado(t *testing.T) {
	ctx := context.Background()
	l := memory.NewLedger()
	ayer := dia.AddDate(0, 0, -1)
	require.NoError(t, l.Stock().Create(ctx, filaStock("viejo", ayer, ayer)))
	require.NoError(t, l.Stock().Create(ctx, filaStock("a", dia, dia)))
	require.NoError(t, l.Stock().Create(ctx, filaStock("b", dia, dia.Add(time.Minute))))

	all, err := l.Stock().List(ctx, entity.DiscrepancyFilter{LocationID: 1})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "a", "viejo"}, []string{all[0].ProductID, all[1].ProductID, all[2].ProductID})

	only, err := l.Stock().List(ctx, entity.DiscrepancyFilter{LocationID: 1, Date: &ayer})
	require.NoError(t, err)
	require.Len(t, only, 1)

	other, err := l.Stock().List(ctx, entity.DiscrepancyFilter{LocationID: 2})
	require.NoError(t, err)
	assert.Empty(t, other)

	last, err := l.Stock().LastDate(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(dia))
}

func TestLedger_RunRevierteSiFalla(t *testing.T) {
	ctx := context.Background()
	l := memory.NewLedger()
	key := entity.NewDiscrepancyKey(dia, 1, entity.ShiftManana)
	require.NoError(t, l.Stock().Create(ctx, filaStock("original", dia, dia)))

	boom := errors.New("boom")
	err := l.Run(ctx, key, func(s repository.StockDiscrepancyRepository, c repository.CashDiscrepancyRepository) error {
		n, err := s.DeleteByKey(ctx, key)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
		require.NoError(t, s.Create(ctx, filaStock("nuevo", dia, dia)))

		// dentro de la tx se ve el estado provisorio
		count, _ := s.CountByKey(ctx, key)
		assert.Equal(t, 1, count)
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := l.Stock().List(ctx, entity.DiscrepancyFilter{LocationID: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "original", rows[0].ProductID)
}

func TestLedger_RunConfirma(t *testing.T) {
	ctx := context.Background()
	l := memory.NewLedger()
	key := entity.NewDiscrepancyKey(dia, 1, entity.ShiftManana)
	require.NoError(t, l.Stock().Create(ctx, filaStock("original", dia, dia)))

	err := l.Run(ctx, key, func(s repository.StockDiscrepancyRepository, c repository.CashDiscrepancyRepository) error {
		if _, err := s.DeleteByKey(ctx, key); err != nil {
			return err
		}
		if err := s.Create(ctx, filaStock("nuevo", dia, dia)); err != nil {
			return err
		}
		return c.Create(ctx, filaCaja(1))
	})
	require.NoError(t, err)

	rows, _ := l.Stock().List(ctx, entity.DiscrepancyFilter{LocationID: 1})
	require.Len(t, rows, 1)
	assert.Equal(t, "nuevo", rows[0].ProductID)
	n, _ := l.Cash().CountByKey(ctx, key)
	assert.Equal(t, 1, n)
}

func TestLedger_RunRechazaOtraClave(t *testing.T) {
	ctx := context.Background()
	l := memory.NewLedger()
	key := entity.NewDiscrepancyKey(dia, 1, entity.ShiftTarde)

	err := l.Run(ctx, key, func(s repository.StockDiscrepancyRepository, _ repository.CashDiscrepancyRepository) error {
		return s.Create(ctx, filaStock("p1", dia, dia)) // turno mañana
	})
	require.Error(t, err)
	n, _ := l.Stock().CountByKey(ctx, entity.NewDiscrepancyKey(dia, 1, entity.ShiftManana))
	assert.Zero(t, n)
}

func TestLedger_CreateRechazaFilaInconsistente(t *testing.T) {
	d := filaStock("p1", dia, dia)
	d.DifferenceQty = 5
	assert.ErrorIs(t, memory.NewLedger().Stock().Create(context.Background(), d), domain.ErrInvalidInput)
}

func TestSources_LoadSeed(t *testing.T) {
	seed := `{
	  "locations": [{"id": 7, "name": "Centro", "has_two_cash_registers": true}],
	  "stock_sheets": [{"date": "2025-03-14", "location_id": 7, "shift": "MANANA", "product_id": "medialuna",
	    "opening_qty": 100, "incoming_qty": 50, "sales": {"local": 100, "rappi": 20}, "discarded_qty": 5,
	    "closing_qty_actual": 20, "unit_value": "96"}],
	  "cash_closings": [{"date": "2025-03-14", "location_id": 7, "shift": "mañana", "register_index": 1,
	    "expected_amount": "1000", "actual_amount": "990.50"}]
	}`
	src := memory.NewSources()
	require.NoError(t, src.LoadSeed(strings.NewReader(seed)))

	ctx := context.Background()
	loc, err := src.Locations().GetByID(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, 2, loc.RegisterCount())

	missing, err := src.Locations().GetByID(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, missing)

	key := entity.NewDiscrepancyKey(dia, 7, entity.ShiftManana)
	sheets, err := src.Sheets().ListByKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.EqualValues(t, 120, sheets[0].TotalSales())

	closings, err := src.Closings().ListByKey(ctx, key)
	require.NoError(t, err)
	require.Len(t, closings, 1)
	assert.True(t, closings[0].ActualAmount.Equal(decimal.RequireFromString("990.5")))

	assert.Error(t, memory.NewSources().LoadSeed(strings.NewReader(`{"cash_closings":[{"date":"14/03","shift":"tarde"}]}`)))
}
