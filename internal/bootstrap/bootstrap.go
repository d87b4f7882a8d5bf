package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
	"github.com/jhoicas/conciliacion-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/conciliacion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/conciliacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/conciliacion-api/internal/infrastructure/redislock"
	"github.com/jhoicas/conciliacion-api/pkg/config"
	"github.com/jhoicas/conciliacion-api/pkg/logger"
)

// UseCases casos de uso listos para los puntos de entrada (HTTP y CLI).
type UseCases struct {
	Generate     *reconciliation.GenerateUseCase
	Batch        *reconciliation.BatchUseCase
	Query        *reconciliation.QueryUseCase
	Compensation *reconciliation.CompensationUseCase
	Report       *reconciliation.ReportUseCase
}

type storage struct {
	runner    reconciliation.TxRunner
	stock     repository.StockDiscrepancyRepository
	cash      repository.CashDiscrepancyRepository
	locations repository.LocationRepository
	sheets    repository.StockSheetRepository
	closings  repository.CashClosingRepository
}

// Build arma almacenamiento, lock por clave y casos de uso según la configuración.
// El cleanup devuelto cierra pool y cliente Redis; siempre es no nil.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*UseCases, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	thresholds, err := cfg.Thresholds()
	if err != nil {
		return nil, cleanup, err
	}

	var st storage
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		st, err = memoryStorage(cfg.Storage.SeedFile)
		if err != nil {
			return nil, cleanup, err
		}
		log.Warn().Str("seed", cfg.Storage.SeedFile).Msg("almacenamiento en memoria: el registro se pierde al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, cleanup, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return nil, cleanup, fmt.Errorf("migraciones: %w", err)
		}
		st = storage{
			runner:    postgres.NewTxRunner(pool),
			stock:     postgres.NewStockDiscrepancyRepository(pool),
			cash:      postgres.NewCashDiscrepancyRepository(pool),
			locations: postgres.NewLocationRepository(pool),
			sheets:    postgres.NewStockSheetRepository(pool),
			closings:  postgres.NewCashClosingRepository(pool),
		}
	}

	opts := []reconciliation.GenerateOption{reconciliation.WithLogger(log.Component("generator"))}
	if cfg.Redis.URL != "" {
		rdb, err := redislock.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = rdb.Close() })
		opts = append(opts, reconciliation.WithKeyLocker(redislock.New(rdb, cfg.Recon.LockTTL, log.Component("redislock"))))
		log.Info().Dur("ttl", cfg.Recon.LockTTL).Msg("lock por clave en Redis")
	}

	generate := reconciliation.NewGenerateUseCase(st.runner, st.locations, st.sheets, st.closings, thresholds, opts...)
	query := reconciliation.NewQueryUseCase(st.stock, st.cash, st.locations)
	compensation := reconciliation.NewCompensationUseCase(st.stock, st.cash, st.locations, thresholds, log.Component("compensation"))
	return &UseCases{
		Generate:     generate,
		Batch:        reconciliation.NewBatchUseCase(generate, st.locations, cfg.Recon.BatchConcurrency, log.Component("batch")),
		Query:        query,
		Compensation: compensation,
		Report:       reconciliation.NewReportUseCase(query, compensation, infrapdf.NewMarotoPDFGenerator()),
	}, cleanup, nil
}

func memoryStorage(seedFile string) (storage, error) {
	ledger := memory.NewLedger()
	src := memory.NewSources()
	if seedFile != "" {
		f, err := os.Open(seedFile)
		if err != nil {
			return storage{}, fmt.Errorf("abrir semilla: %w", err)
		}
		defer f.Close()
		if err := src.LoadSeed(f); err != nil {
			return storage{}, err
		}
	}
	return storage{
		runner:    ledger,
		stock:     ledger.Stock(),
		cash:      ledger.Cash(),
		locations: src.Locations(),
		sheets:    src.Sheets(),
		closings:  src.Closings(),
	}, nil
}
