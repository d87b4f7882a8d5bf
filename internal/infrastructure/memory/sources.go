package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)
var _ repository.StockSheetRepository = (*SheetRepo)(nil)
var _ repository.CashClosingRepository = (*ClosingRepo)(nil)

// Sources catálogo de locales, planillas de stock y cierres de caja en memoria.
type Sources struct {
	mu        sync.RWMutex
	locations map[int64]*entity.Location
	sheets    map[string][]*entity.StockMovementRecord
	closings  map[string][]*entity.CashRegisterClosing
}

// NewSources crea fuentes vacías.
func NewSources() *Sources {
	return &Sources{
		locations: map[int64]*entity.Location{},
		sheets:    map[string][]*entity.StockMovementRecord{},
		closings:  map[string][]*entity.CashRegisterClosing{},
	}
}

// AddLocation agrega o reemplaza un local del catálogo.
func (s *Sources) AddLocation(loc entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[loc.ID] = &loc
}

// AddStockRecords carga filas de planilla; se indexan por su clave.
func (s *Sources) AddStockRecords(recs ...*entity.StockMovementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		k := entity.NewDiscrepancyKey(r.Date, r.LocationID, r.Shift).String()
		s.sheets[k] = append(s.sheets[k], r)
	}
}

// AddClosings carga cierres de caja.
func (s *Sources) AddClosings(cs ...*entity.CashRegisterClosing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cs {
		k := entity.NewDiscrepancyKey(c.Date, c.LocationID, c.Shift).String()
		s.closings[k] = append(s.closings[k], c)
	}
}

// Locations repositorio del catálogo.
func (s *Sources) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Sheets repositorio de planillas de stock.
func (s *Sources) Sheets() *SheetRepo { return &SheetRepo{s: s} }

// Closings repositorio de cierres de caja.
func (s *Sources) Closings() *ClosingRepo { return &ClosingRepo{s: s} }

// LocationRepo catálogo de locales.
type LocationRepo struct{ s *Sources }

// GetByID devuelve nil, nil si el local no existe.
func (r *LocationRepo) GetByID(_ context.Context, id int64) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	loc, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	c := *loc
	return &c, nil
}

// List locales ordenados por id.
func (r *LocationRepo) List(_ context.Context) ([]*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, loc := range r.s.locations {
		c := *loc
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *entity.Location) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// SheetRepo planillas de stock.
type SheetRepo struct{ s *Sources }

// ListByKey filas de planilla de la clave (lista vacía si no hay).
func (r *SheetRepo) ListByKey(_ context.Context, key entity.DiscrepancyKey) ([]*entity.StockMovementRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.sheets[key.String()]), nil
}

// ClosingRepo cierres de caja.
type ClosingRepo struct{ s *Sources }

// ListByKey cierres de la clave ordenados por caja.
func (r *ClosingRepo) ListByKey(_ context.Context, key entity.DiscrepancyKey) ([]*entity.CashRegisterClosing, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := slices.Clone(r.s.closings[key.String()])
	slices.SortStableFunc(out, func(a, b *entity.CashRegisterClosing) int { return a.RegisterIndex - b.RegisterIndex })
	return out, nil
}

// ── Semilla ───────────────────────────────────────────────────────────────────

type seedFile struct {
	Locations []struct {
		ID                  int64  `json:"id"`
		Name                string `json:"name"`
		HasTwoCashRegisters bool   `json:"has_two_cash_registers"`
	} `json:"locations"`
	StockSheets []struct {
		Date                   string           `json:"date"`
		LocationID             int64            `json:"location_id"`
		Shift                  string           `json:"shift"`
		ProductID              string           `json:"product_id"`
		ProductName            string           `json:"product_name"`
		OpeningQty             int64            `json:"opening_qty"`
		IncomingQty            int64            `json:"incoming_qty"`
		Sales                  map[string]int64 `json:"sales"`
		DiscardedQty           int64            `json:"discarded_qty"`
		InternalConsumptionQty int64            `json:"internal_consumption_qty"`
		HasInternalConsumption bool             `json:"has_internal_consumption"`
		ClosingQtyActual       int64            `json:"closing_qty_actual"`
		UnitValue              decimal.Decimal  `json:"unit_value"`
	} `json:"stock_sheets"`
	CashClosings []struct {
		Date           string          `json:"date"`
		LocationID     int64           `json:"location_id"`
		Shift          string          `json:"shift"`
		RegisterIndex  int             `json:"register_index"`
		ExpectedAmount decimal.Decimal `json:"expected_amount"`
		ActualAmount   decimal.Decimal `json:"actual_amount"`
	} `json:"cash_closings"`
}

// LoadSeed carga locales, planillas y cierres desde un JSON (modo memoria para desarrollo).
func (s *Sources) LoadSeed(r io.Reader) error {
	var f seedFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return fmt.Errorf("decodificar semilla: %w", err)
	}
	for _, l := range f.Locations {
		s.AddLocation(entity.Location{ID: l.ID, Name: l.Name, HasTwoCashRegisters: l.HasTwoCashRegisters})
	}
	for i, row := range f.StockSheets {
		date, shift, err := parseSeedKey(row.Date, row.Shift)
		if err != nil {
			return fmt.Errorf("stock_sheets[%d]: %w", i, err)
		}
		sales := make(map[entity.SalesChannel]int64, len(row.Sales))
		for ch, qty := range row.Sales {
			sales[entity.SalesChannel(ch)] = qty
		}
		s.AddStockRecords(&entity.StockMovementRecord{
			ProductID:              row.ProductID,
			ProductName:            row.ProductName,
			Date:                   date,
			LocationID:             row.LocationID,
			Shift:                  shift,
			OpeningQty:             row.OpeningQty,
			IncomingQty:            row.IncomingQty,
			SalesByChannel:         sales,
			DiscardedQty:           row.DiscardedQty,
			InternalConsumptionQty: row.InternalConsumptionQty,
			HasInternalConsumption: row.HasInternalConsumption,
			ClosingQtyActual:       row.ClosingQtyActual,
			UnitValue:              row.UnitValue,
		})
	}
	for i, row := range f.CashClosings {
		date, shift, err := parseSeedKey(row.Date, row.Shift)
		if err != nil {
			return fmt.Errorf("cash_closings[%d]: %w", i, err)
		}
		s.AddClosings(&entity.CashRegisterClosing{
			Date:           date,
			LocationID:     row.LocationID,
			Shift:          shift,
			RegisterIndex:  row.RegisterIndex,
			ExpectedAmount: row.ExpectedAmount,
			ActualAmount:   row.ActualAmount,
		})
	}
	return nil
}

func parseSeedKey(date, shift string) (time.Time, entity.Shift, error) {
	d, err := entity.ParseDate(date)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("fecha %q: %w", date, err)
	}
	sh, ok := entity.ParseShift(shift)
	if !ok {
		return time.Time{}, "", fmt.Errorf("turno %q inválido", shift)
	}
	return d, sh, nil
}
