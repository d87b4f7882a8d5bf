package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

// CompensationUseCase calcula, al leer, si las diferencias de stock y caja de un local se compensan.
type CompensationUseCase struct {
	stockRepo  repository.StockDiscrepancyRepository
	cashRepo   repository.CashDiscrepancyRepository
	locations  repository.LocationRepository
	thresholds reconciliation.Thresholds
	log        zerolog.Logger
}

// NewCompensationUseCase construye el caso de uso.
func NewCompensationUseCase(
	stockRepo repository.StockDiscrepancyRepository,
	cashRepo repository.CashDiscrepancyRepository,
	locations repository.LocationRepository,
	thresholds reconciliation.Thresholds,
	log zerolog.Logger,
) *CompensationUseCase {
	return &CompensationUseCase{
		stockRepo:  stockRepo,
		cashRepo:   cashRepo,
		locations:  locations,
		thresholds: thresholds,
		log:        log,
	}
}

// Analyze suma el valor de las diferencias de stock y de caja del día (o del turno si shift != nil)
// y clasifica la relación. Un estado inalcanzable se registra en nivel error y se devuelve
// junto con domain.ErrComputationAssertion.
func (uc *CompensationUseCase) Analyze(ctx context.Context, date time.Time, locationID int64, shift *entity.Shift) (*entity.CompensationVerdict, error) {
	if err := uc.checkLocation(ctx, locationID); err != nil {
		return nil, err
	}
	day := entity.NormalizeDate(date)
	filter := entity.DiscrepancyFilter{LocationID: locationID, Date: &day, Shift: shift}

	stock, err := uc.stockRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("leer diferencias de stock: %w", err)
	}
	cash, err := uc.cashRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("leer diferencias de caja: %w", err)
	}

	stockValue := decimal.Zero
	for _, d := range stock {
		stockValue = stockValue.Add(d.MonetaryValue)
	}
	cashValue := decimal.Zero
	for _, d := range cash {
		cashValue = cashValue.Add(d.DifferenceAmount)
	}
	return uc.verdict(day, locationID, shift, stockValue, cashValue)
}

// AnalyzeValues clasifica valores ya agregados (sin lectura del registro).
func (uc *CompensationUseCase) AnalyzeValues(date time.Time, locationID int64, shift *entity.Shift, stockValue, cashValue decimal.Decimal) (*entity.CompensationVerdict, error) {
	return uc.verdict(entity.NormalizeDate(date), locationID, shift, stockValue, cashValue)
}

func (uc *CompensationUseCase) verdict(day time.Time, locationID int64, shift *entity.Shift, stockValue, cashValue decimal.Decimal) (*entity.CompensationVerdict, error) {
	c, err := reconciliation.AnalyzeCompensation(stockValue, cashValue, uc.thresholds)
	v := &entity.CompensationVerdict{
		Date:                   day,
		LocationID:             locationID,
		Shift:                  shift,
		StockValue:             stockValue,
		CashValue:              cashValue,
		NetDifference:          c.NetDifference,
		Status:                 c.Status,
		CompensationPercentage: c.Percentage,
	}
	if err != nil {
		uc.log.Error().
			Err(err).
			Int64("location_id", locationID).
			Str("date", day.Format(entity.DateLayout)).
			Str("stock_value", stockValue.String()).
			Str("cash_value", cashValue.String()).
			Msg("ANÁLISIS DE COMPENSACIÓN EN ESTADO INALCANZABLE")
		return v, err
	}
	return v, nil
}

func (uc *CompensationUseCase) checkLocation(ctx context.Context, locationID int64) error {
	loc, err := uc.locations.GetByID(ctx, locationID)
	if err != nil {
		return fmt.Errorf("catálogo de locales: %w", err)
	}
	if loc == nil {
		return fmt.Errorf("%w: %d", domain.ErrInvalidLocation, locationID)
	}
	return nil
}
