package reconciliation

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

// QueryUseCase lecturas del registro de diferencias para las capas de presentación.
// Solo filtra y ordena (fecha desc, creación desc); no recalcula nada.
// Un local fuera del catálogo devuelve domain.ErrInvalidLocation, igual que la generación.
type QueryUseCase struct {
	stockRepo repository.StockDiscrepancyRepository
	cashRepo  repository.CashDiscrepancyRepository
	locations repository.LocationRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	stockRepo repository.StockDiscrepancyRepository,
	cashRepo repository.CashDiscrepancyRepository,
	locations repository.LocationRepository,
) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, cashRepo: cashRepo, locations: locations}
}

// History diferencias de un local en un rango de fechas.
type History struct {
	LocationID int64
	From       time.Time
	To         time.Time
	Stock      []*entity.StockDiscrepancy
	Cash       []*entity.CashDiscrepancy
}

// Summary estadísticas de un período para tableros.
type Summary struct {
	LocationID          int64
	From                time.Time
	To                  time.Time
	Days                int // días con al menos una fila
	StockRows           int
	CashRows            int
	StockBySeverity     map[entity.Severity]int
	CashBySeverity      map[entity.Severity]int
	StockMonetaryTotal  decimal.Decimal
	CashDifferenceTotal decimal.Decimal
	LastDate            *time.Time
}

// GetStockDiscrepancies diferencias de stock de un día; shift nil = ambos turnos.
func (uc *QueryUseCase) GetStockDiscrepancies(ctx context.Context, date time.Time, locationID int64, shift *entity.Shift) ([]*entity.StockDiscrepancy, error) {
	if _, err := uc.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	day := entity.NormalizeDate(date)
	list, err := uc.stockRepo.List(ctx, entity.DiscrepancyFilter{LocationID: locationID, Date: &day, Shift: shift})
	if err != nil {
		return nil, fmt.Errorf("consultar diferencias de stock: %w", err)
	}
	sortStock(list)
	return list, nil
}

// GetCashDiscrepancies diferencias de caja de un día; shift nil = ambos turnos.
func (uc *QueryUseCase) GetCashDiscrepancies(ctx context.Context, date time.Time, locationID int64, shift *entity.Shift) ([]*entity.CashDiscrepancy, error) {
	if _, err := uc.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	return uc.listCash(ctx, date, locationID, shift)
}

func (uc *QueryUseCase) listCash(ctx context.Context, date time.Time, locationID int64, shift *entity.Shift) ([]*entity.CashDiscrepancy, error) {
	day := entity.NormalizeDate(date)
	list, err := uc.cashRepo.List(ctx, entity.DiscrepancyFilter{LocationID: locationID, Date: &day, Shift: shift})
	if err != nil {
		return nil, fmt.Errorf("consultar diferencias de caja: %w", err)
	}
	sortCash(list)
	return list, nil
}

// GetLocationCash vista por local (suma de cajas). nil si no hay filas.
func (uc *QueryUseCase) GetLocationCash(ctx context.Context, date time.Time, locationID int64, shift *entity.Shift) (*entity.LocationCashDiscrepancy, error) {
	if _, err := uc.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	list, err := uc.listCash(ctx, date, locationID, shift)
	if err != nil {
		return nil, err
	}
	return reconciliation.CombineRegisters(list), nil
}

// GetLastDiscrepancyDate fecha más reciente con alguna fila (stock o caja); nil si no hay.
func (uc *QueryUseCase) GetLastDiscrepancyDate(ctx context.Context, locationID int64) (*time.Time, error) {
	if _, err := uc.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	s, err := uc.stockRepo.LastDate(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("última fecha de stock: %w", err)
	}
	c, err := uc.cashRepo.LastDate(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("última fecha de caja: %w", err)
	}
	switch {
	case s == nil:
		return c, nil
	case c == nil:
		return s, nil
	case c.After(*s):
		return c, nil
	}
	return s, nil
}

// GetHistory diferencias de un local entre from y to (inclusive).
func (uc *QueryUseCase) GetHistory(ctx context.Context, locationID int64, from, to time.Time) (*History, error) {
	from, to = entity.NormalizeDate(from), entity.NormalizeDate(to)
	if to.Before(from) {
		return nil, domain.Invalid("rango de fechas invertido")
	}
	if _, err := uc.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	filter := entity.DiscrepancyFilter{LocationID: locationID, From: &from, To: &to}
	stock, err := uc.stockRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("historial de stock: %w", err)
	}
	cash, err := uc.cashRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("historial de caja: %w", err)
	}
	sortStock(stock)
	sortCash(cash)
	return &History{LocationID: locationID, From: from, To: to, Stock: stock, Cash: cash}, nil
}

// GetSummary cuenta filas por severidad y totaliza montos del período.
func (uc *QueryUseCase) GetSummary(ctx context.Context, locationID int64, from, to time.Time) (*Summary, error) {
	h, err := uc.GetHistory(ctx, locationID, from, to)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		LocationID:          locationID,
		From:                h.From,
		To:                  h.To,
		StockRows:           len(h.Stock),
		CashRows:            len(h.Cash),
		StockBySeverity:     map[entity.Severity]int{},
		CashBySeverity:      map[entity.Severity]int{},
		StockMonetaryTotal:  decimal.Zero,
		CashDifferenceTotal: decimal.Zero,
	}
	days := map[time.Time]bool{}
	for _, d := range h.Stock {
		s.StockBySeverity[d.Severity]++
		s.StockMonetaryTotal = s.StockMonetaryTotal.Add(d.MonetaryValue)
		days[d.Date] = true
	}
	for _, d := range h.Cash {
		s.CashBySeverity[d.Severity]++
		s.CashDifferenceTotal = s.CashDifferenceTotal.Add(d.DifferenceAmount)
		days[d.Date] = true
	}
	s.Days = len(days)
	for d := range days {
		if s.LastDate == nil || d.After(*s.LastDate) {
			last := d
			s.LastDate = &last
		}
	}
	return s, nil
}

// GetLocation resuelve un local del catálogo; domain.ErrInvalidLocation si no existe.
func (uc *QueryUseCase) GetLocation(ctx context.Context, locationID int64) (*entity.Location, error) {
	loc, err := uc.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("catálogo de locales: %w", err)
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidLocation, locationID)
	}
	return loc, nil
}

func sortStock(list []*entity.StockDiscrepancy) {
	slices.SortStableFunc(list, func(a, b *entity.StockDiscrepancy) int {
		return newestFirst(a.Date, b.Date, a.CreatedAt, b.CreatedAt)
	})
}

func sortCash(list []*entity.CashDiscrepancy) {
	slices.SortStableFunc(list, func(a, b *entity.CashDiscrepancy) int {
		return newestFirst(a.Date, b.Date, a.CreatedAt, b.CreatedAt)
	})
}

func newestFirst(dateA, dateB, createdA, createdB time.Time) int {
	if c := dateB.Compare(dateA); c != 0 {
		return c
	}
	return createdB.Compare(createdA)
}
