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

func planilla(opening, incoming int64, sales map[entity.SalesChannel]int64, discard, internal int64, hasInternal bool, closing int64) *entity.StockMovementRecord {
	return &entity.StockMovementRecord{
		ProductID:              "medialuna",
		ProductName:            "Medialuna de manteca",
		Date:                   time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		LocationID:             1,
		Shift:                  entity.ShiftManana,
		OpeningQty:             opening,
		IncomingQty:            incoming,
		SalesByChannel:         sales,
		DiscardedQty:           discard,
		InternalConsumptionQty: internal,
		HasInternalConsumption: hasInternal,
		ClosingQtyActual:       closing,
		UnitValue:              decimal.NewFromInt(850),
	}
}

func TestExpectedClosing_Formula(t *testing.T) {
	cases := []struct {
		name        string
		rec         *entity.StockMovementRecord
		wantClosing int64
	}{
		{
			name:        "todos los canales",
			rec:         planilla(40, 60, map[entity.SalesChannel]int64{entity.ChannelLocal: 30, entity.ChannelMercadoPago: 5, entity.ChannelPedidosYa: 7, entity.ChannelRappi: 3}, 2, 1, true, 52),
			wantClosing: 40 + 60 - 45 - 2 - 1,
		},
		{
			name:        "consumo interno ignorado si el producto no lo admite",
			rec:         planilla(10, 0, map[entity.SalesChannel]int64{entity.ChannelLocal: 4}, 0, 3, false, 6),
			wantClosing: 6,
		},
		{
			name:        "descarte y consumo en cero",
			rec:         planilla(10, 5, nil, 0, 0, true, 15),
			wantClosing: 15,
		},
		{
			name:        "esperado negativo no se recorta",
			rec:         planilla(5, 0, map[entity.SalesChannel]int64{entity.ChannelLocal: 9}, 1, 0, false, 0),
			wantClosing: -5,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := reconciliation.ExpectedClosing(tc.rec)
			require.NoError(t, err)
			assert.Equal(t, tc.wantClosing, got)
		})
	}
}

func TestExpectedClosing_RechazaNegativos(t *testing.T) {
	rec := planilla(10, -1, nil, 0, 0, false, 0)
	_, err := reconciliation.ExpectedClosing(rec)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rec = planilla(10, 0, map[entity.SalesChannel]int64{entity.ChannelRappi: -2}, 0, 0, false, 0)
	_, err = reconciliation.ExpectedClosing(rec)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rec = planilla(10, 0, map[entity.SalesChannel]int64{"glovo": 1}, 0, 0, false, 0)
	_, err = reconciliation.ExpectedClosing(rec)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "canal desconocido")
}
