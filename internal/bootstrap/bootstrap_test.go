package bootstrap_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/bootstrap"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	domainrecon "github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
	"github.com/jhoicas/conciliacion-api/pkg/config"
	"github.com/jhoicas/conciliacion-api/pkg/logger"
)

func memoryConfig(seed string) *config.Config {
	def := domainrecon.DefaultThresholds()
	return &config.Config{
		App:     config.AppConfig{Env: "test", Name: "conciliacion-test"},
		Storage: config.StorageConfig{Driver: config.StorageMemory, SeedFile: seed},
		Recon: config.ReconConfig{
			StockAlertPercent:  def.StockAlertPercent.String(),
			StockHighPercent:   def.StockHighPercent.String(),
			CashAlertAmount:    def.CashAlertAmount.String(),
			CashHighAmount:     def.CashHighAmount.String(),
			CompensationMargin: def.CompensationMargin.String(),
			CompensatedRatio:   def.CompensatedRatio.String(),
			PartialRatio:       def.PartialRatio.String(),
			BatchConcurrency:   2,
		},
	}
}

func TestBuild_MemoriaConSemilla(t *testing.T) {
	var out bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Level: "warn", Out: &out})

	uc, cleanup, err := bootstrap.Build(context.Background(), memoryConfig("testdata/seed.json"), log)
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	dia := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	outcomes, err := uc.Batch.GenerateAll(ctx, reconciliation.BatchInput{Date: dia, Shift: entity.ShiftTarde})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, reconciliation.BatchStatusNoSourceData, outcomes[0].Status)
	assert.Equal(t, reconciliation.BatchStatusGenerated, outcomes[1].Status)

	tarde := entity.ShiftTarde
	combined, err := uc.Query.GetLocationCash(ctx, dia, 2, &tarde)
	require.NoError(t, err)
	require.NotNil(t, combined)
	assert.True(t, combined.DifferenceAmount.Equal(decimal.NewFromInt(-12000)))
	assert.Equal(t, entity.SeverityHigh, combined.Severity)

	assert.Contains(t, out.String(), "almacenamiento en memoria")
}

func TestBuild_SemillaInexistente(t *testing.T) {
	log := logger.New(logger.Config{Env: "test", Level: "error", Out: &bytes.Buffer{}})
	_, cleanup, err := bootstrap.Build(context.Background(), memoryConfig("testdata/no-existe.json"), log)
	defer cleanup()
	assert.Error(t, err)
}

func TestBuild_UmbralesInvalidos(t *testing.T) {
	cfg := memoryConfig("")
	cfg.Recon.CashHighAmount = "mucho"
	log := logger.New(logger.Config{Env: "test", Level: "error", Out: &bytes.Buffer{}})
	_, cleanup, err := bootstrap.Build(context.Background(), cfg, log)
	defer cleanup()
	assert.Error(t, err)
}
