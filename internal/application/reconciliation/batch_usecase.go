package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
)

// Estados de una corrida por local dentro de un lote.
const (
	BatchStatusGenerated     = "generated"
	BatchStatusAlreadyExists = "already_exists"
	BatchStatusNoSourceData  = "no_source_data"
	BatchStatusFailed        = "failed"
)

// BatchUseCase genera las diferencias de todos los locales del catálogo para una fecha y turno.
// Cada local es una clave distinta, por lo que se procesan en paralelo.
type BatchUseCase struct {
	generate    *GenerateUseCase
	locations   repository.LocationRepository
	concurrency int
	log         zerolog.Logger
}

// NewBatchUseCase construye el caso de uso. concurrency <= 0 usa 4.
func NewBatchUseCase(generate *GenerateUseCase, locations repository.LocationRepository, concurrency int, log zerolog.Logger) *BatchUseCase {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchUseCase{generate: generate, locations: locations, concurrency: concurrency, log: log}
}

// BatchInput parámetros del lote (mismos flags para todos los locales).
type BatchInput struct {
	Date                   time.Time
	Shift                  entity.Shift
	Overwrite              bool
	ForceCashDiscrepancies bool
}

// BatchOutcome resultado de un local. Err es nil solo con Status generated.
type BatchOutcome struct {
	LocationID int64
	Status     string
	Result     *GenerateResult
	Err        error
}

// GenerateAll corre Generate por local. El fallo de un local no corta el resto;
// solo devuelve error si no se pudo leer el catálogo o si ctx se canceló.
func (uc *BatchUseCase) GenerateAll(ctx context.Context, in BatchInput) ([]BatchOutcome, error) {
	locs, err := uc.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar locales: %w", err)
	}
	outcomes := make([]BatchOutcome, len(locs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, loc := range locs {
		g.Go(func() error {
			res, err := uc.generate.Generate(gctx, GenerateInput{
				Date:                   in.Date,
				LocationID:             loc.ID,
				Shift:                  in.Shift,
				Overwrite:              in.Overwrite,
				ForceCashDiscrepancies: in.ForceCashDiscrepancies,
			})
			outcomes[i] = BatchOutcome{LocationID: loc.ID, Status: batchStatus(err), Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Status == BatchStatusFailed {
			failed++
		}
	}
	uc.log.Info().
		Str("date", in.Date.Format(entity.DateLayout)).
		Str("shift", string(in.Shift)).
		Int("locations", len(locs)).
		Int("failed", failed).
		Msg("lote de conciliación terminado")
	return outcomes, nil
}

func batchStatus(err error) string {
	switch {
	case err == nil:
		return BatchStatusGenerated
	case errors.Is(err, domain.ErrAlreadyExists):
		return BatchStatusAlreadyExists
	case errors.Is(err, domain.ErrNoSourceData):
		return BatchStatusNoSourceData
	}
	return BatchStatusFailed
}
