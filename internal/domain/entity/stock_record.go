package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
)

// SalesChannel canal de venta de una planilla de stock.
type SalesChannel string

// Canales de venta.
const (
	ChannelLocal       SalesChannel = "local" // salón / mostrador
	ChannelMercadoPago SalesChannel = "mercadopago"
	ChannelPedidosYa   SalesChannel = "pedidosya"
	ChannelRappi       SalesChannel = "rappi"
)

// SalesChannels orden estable de los canales (columnas de la planilla).
var SalesChannels = []SalesChannel{ChannelLocal, ChannelMercadoPago, ChannelPedidosYa, ChannelRappi}

// Valid indica si el canal es conocido.
func (c SalesChannel) Valid() bool {
	for _, known := range SalesChannels {
		if c == known {
			return true
		}
	}
	return false
}

// StockMovementRecord fila de planilla de stock de un producto para fecha, local y turno.
// Es un dato de origen: la conciliación nunca la modifica.
type StockMovementRecord struct {
	ProductID              string
	ProductName            string
	Date                   time.Time
	LocationID             int64
	Shift                  Shift
	OpeningQty             int64
	IncomingQty            int64
	SalesByChannel         map[SalesChannel]int64
	DiscardedQty           int64
	InternalConsumptionQty int64
	HasInternalConsumption bool // consumo interno solo descuenta si el producto lo admite
	ClosingQtyActual       int64
	UnitValue              decimal.Decimal
}

// Validate rechaza cantidades negativas en lugar de recortarlas.
func (r *StockMovementRecord) Validate() error {
	if r.ProductID == "" {
		return domain.Invalid("producto sin id")
	}
	checks := []struct {
		name string
		v    int64
	}{
		{"opening_qty", r.OpeningQty},
		{"incoming_qty", r.IncomingQty},
		{"discarded_qty", r.DiscardedQty},
		{"internal_consumption_qty", r.InternalConsumptionQty},
		{"closing_qty_actual", r.ClosingQtyActual},
	}
	for _, c := range checks {
		if c.v < 0 {
			return domain.Invalid("producto %s: %s negativo (%d)", r.ProductID, c.name, c.v)
		}
	}
	for ch, qty := range r.SalesByChannel {
		if !ch.Valid() {
			return domain.Invalid("producto %s: canal de venta desconocido %q", r.ProductID, ch)
		}
		if qty < 0 {
			return domain.Invalid("producto %s: venta negativa en %s (%d)", r.ProductID, ch, qty)
		}
	}
	if r.UnitValue.IsNegative() {
		return domain.Invalid("producto %s: valor unitario negativo", r.ProductID)
	}
	return nil
}

// TotalSales suma las ventas de todos los canales.
func (r *StockMovementRecord) TotalSales() int64 {
	var total int64
	for _, qty := range r.SalesByChannel {
		total += qty
	}
	return total
}
