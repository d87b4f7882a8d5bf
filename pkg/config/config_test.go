package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliacion-api/internal/domain"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 30*time.Second, cfg.Recon.LockTTL)
	assert.Equal(t, 4, cfg.Recon.BatchConcurrency)

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.True(t, th.StockAlertPercent.Equal(decimal.NewFromInt(2)))
	assert.True(t, th.CashHighAmount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, th.CompensationMargin.Equal(decimal.RequireFromString("0.1")))
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "MEMORY")
	v.Set("RECON_CASH_ALERT_AMOUNT", "2500.50")
	v.Set("RECON_BATCH_CONCURRENCY", "8")
	v.Set("DB_PASSWORD", "p@ss:word")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Recon.BatchConcurrency)
	assert.Contains(t, cfg.DB.ConnectionString(), "p%40ss%3Aword")

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.True(t, th.CashAlertAmount.Equal(decimal.RequireFromString("2500.5")))
}

func TestFromViper_Invalidos(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "sqlite")
	_, err := fromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("RECON_COMPENSATION_MARGIN", "0")
	_, err = fromViper(v)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	v = viper.New()
	v.Set("RECON_STOCK_HIGH_PERCENT", "cinco")
	_, err = fromViper(v)
	assert.Error(t, err)
}
