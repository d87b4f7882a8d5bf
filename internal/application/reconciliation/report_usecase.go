package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
)

// Report datos de una conciliación (día de un local, opcionalmente un turno) para el PDF.
type Report struct {
	Location     *entity.Location
	Date         time.Time
	Shift        *entity.Shift
	Stock        []*entity.StockDiscrepancy
	Cash         []*entity.CashDiscrepancy
	LocationCash *entity.LocationCashDiscrepancy
	Verdict      *entity.CompensationVerdict
	GeneratedAt  time.Time
}

// ReportUseCase arma el reporte leyendo el registro y lo delega al generador PDF.
type ReportUseCase struct {
	query        *QueryUseCase
	compensation *CompensationUseCase
	generator    ReportGenerator
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(query *QueryUseCase, compensation *CompensationUseCase, generator ReportGenerator) *ReportUseCase {
	return &ReportUseCase{query: query, compensation: compensation, generator: generator}
}

// Build arma los datos del reporte sin generar el PDF.
func (uc *ReportUseCase) Build(ctx context.Context, date time.Time, locationID int64, shift *entity.Shift) (*Report, error) {
	loc, err := uc.query.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	stock, err := uc.query.GetStockDiscrepancies(ctx, date, locationID, shift)
	if err != nil {
		return nil, err
	}
	cash, err := uc.query.GetCashDiscrepancies(ctx, date, locationID, shift)
	if err != nil {
		return nil, err
	}
	verdict, err := uc.compensation.Analyze(ctx, date, locationID, shift)
	if err != nil && !errors.Is(err, domain.ErrComputationAssertion) {
		return nil, err
	}
	return &Report{
		Location:     loc,
		Date:         entity.NormalizeDate(date),
		Shift:        shift,
		Stock:        stock,
		Cash:         cash,
		LocationCash: reconciliation.CombineRegisters(cash),
		Verdict:      verdict,
		GeneratedAt:  time.Now(),
	}, nil
}

// GeneratePDF arma el reporte y devuelve los bytes del PDF.
func (uc *ReportUseCase) GeneratePDF(ctx context.Context, date time.Time, locationID int64, shift *entity.Shift) ([]byte, error) {
	r, err := uc.Build(ctx, date, locationID, shift)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.generator.GenerateReconciliationPDF(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("reporte de conciliación: %w", err)
	}
	return pdf, nil
}
