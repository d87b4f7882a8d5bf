package reconciliation_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recon "github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
)

type capturingGenerator struct{ got *recon.Report }

func (g *capturingGenerator) GenerateReconciliationPDF(_ context.Context, r *recon.Report) ([]byte, error) {
	g.got = r
	return []byte("%PDF-1.4"), nil
}

func TestReport_ArmaDatosYDelega(t *testing.T) {
	f := newFixture(t)
	f.cargarMedialunas(localUnaCaja, entity.ShiftManana)
	f.cargarCierre(localUnaCaja, entity.ShiftManana, 0, "10000", "10500")
	ctx := context.Background()
	_, err := f.uc.Generate(ctx, recon.GenerateInput{Date: dia, LocationID: localUnaCaja, Shift: entity.ShiftManana})
	require.NoError(t, err)

	q := recon.NewQueryUseCase(f.ledger.Stock(), f.ledger.Cash(), f.src.Locations())
	comp := recon.NewCompensationUseCase(f.ledger.Stock(), f.ledger.Cash(), f.src.Locations(), reconciliation.DefaultThresholds(), zerolog.Nop())
	gen := &capturingGenerator{}
	uc := recon.NewReportUseCase(q, comp, gen)

	pdf, err := uc.GeneratePDF(ctx, dia, localUnaCaja, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))

	require.NotNil(t, gen.got)
	assert.Equal(t, "Centro", gen.got.Location.Name)
	assert.Len(t, gen.got.Stock, 1)
	assert.Len(t, gen.got.Cash, 1)
	require.NotNil(t, gen.got.LocationCash)
	require.NotNil(t, gen.got.Verdict)
	assert.Equal(t, entity.CompensationCompensated, gen.got.Verdict.Status)
}
