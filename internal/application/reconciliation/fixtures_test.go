package reconciliation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	recon "github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
	"github.com/jhoicas/conciliacion-api/internal/infrastructure/memory"
)

var (
	dia   = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	reloj = func() time.Time { return time.Date(2025, 3, 14, 22, 30, 0, 0, time.UTC) }
)

const (
	localUnaCaja  int64 = 1
	localDosCajas int64 = 2
)

type fixture struct {
	ledger *memory.Ledger
	src    *memory.Sources
	uc     *recon.GenerateUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{ledger: memory.NewLedger(), src: memory.NewSources()}
	f.src.AddLocation(entity.Location{ID: localUnaCaja, Name: "Centro"})
	f.src.AddLocation(entity.Location{ID: localDosCajas, Name: "Shopping", HasTwoCashRegisters: true})
	f.uc = f.newUseCase(f.ledger)
	return f
}

func (f *fixture) newUseCase(runner recon.TxRunner) *recon.GenerateUseCase {
	return recon.NewGenerateUseCase(
		runner,
		f.src.Locations(),
		f.src.Sheets(),
		f.src.Closings(),
		reconciliation.DefaultThresholds(),
		recon.WithClock(reloj),
	)
}

// medialunas: esperado 100+50-120-5 = 25, real 20 → -5 unidades (-20 %), valor -480.
func (f *fixture) cargarMedialunas(locationID int64, shift entity.Shift) {
	f.src.AddStockRecords(&entity.StockMovementRecord{
		ProductID:        "medialuna",
		ProductName:      "Medialuna",
		Date:             dia,
		LocationID:       locationID,
		Shift:            shift,
		OpeningQty:       100,
		IncomingQty:      50,
		SalesByChannel:   map[entity.SalesChannel]int64{entity.ChannelLocal: 100, entity.ChannelRappi: 20},
		DiscardedQty:     5,
		ClosingQtyActual: 20,
		UnitValue:        decimal.NewFromInt(96),
	})
}

// cafe: esperado 30-10 = 20, real 20; fila con diferencia cero y severidad none.
func (f *fixture) cargarCafe(locationID int64, shift entity.Shift) {
	f.src.AddStockRecords(&entity.StockMovementRecord{
		ProductID:        "cafe",
		Date:             dia,
		LocationID:       locationID,
		Shift:            shift,
		OpeningQty:       30,
		SalesByChannel:   map[entity.SalesChannel]int64{entity.ChannelLocal: 10},
		ClosingQtyActual: 20,
		UnitValue:        decimal.NewFromInt(1500),
	})
}

func (f *fixture) cargarCierre(locationID int64, shift entity.Shift, register int, expected, actual string) {
	f.src.AddClosings(&entity.CashRegisterClosing{
		Date:           dia,
		LocationID:     locationID,
		Shift:          shift,
		RegisterIndex:  register,
		ExpectedAmount: decimal.RequireFromString(expected),
		ActualAmount:   decimal.RequireFromString(actual),
	})
}

func (f *fixture) stockRows(t *testing.T, locationID int64) []*entity.StockDiscrepancy {
	t.Helper()
	rows, err := f.ledger.Stock().List(context.Background(), entity.DiscrepancyFilter{LocationID: locationID})
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func (f *fixture) cashRows(t *testing.T, locationID int64) []*entity.CashDiscrepancy {
	t.Helper()
	rows, err := f.ledger.Cash().List(context.Background(), entity.DiscrepancyFilter{LocationID: locationID})
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

var errDiscoLleno = errors.New("disco lleno")

// failingRunner delega en el ledger pero hace fallar las inserciones de caja.
type failingRunner struct{ inner *memory.Ledger }

func (r failingRunner) Run(ctx context.Context, key entity.DiscrepancyKey, fn func(
	repository.StockDiscrepancyRepository,
	repository.CashDiscrepancyRepository,
) error) error {
	return r.inner.Run(ctx, key, func(s repository.StockDiscrepancyRepository, c repository.CashDiscrepancyRepository) error {
		return fn(s, failingCash{c})
	})
}

type failingCash struct {
	repository.CashDiscrepancyRepository
}

func (failingCash) Create(context.Context, *entity.CashDiscrepancy) error { return errDiscoLleno }
