package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
	"github.com/jhoicas/conciliacion-api/pkg/keylock"
)

// rowNamespace espacio de nombres para los IDs deterministas de filas del registro.
var rowNamespace = uuid.MustParse("7b0f5a52-3c1e-4f5e-9a57-2f4c9e0d8a11")

// GenerateUseCase genera las diferencias de stock y caja de una clave (fecha, local, turno)
// y las escribe en el registro de forma transaccional, respetando la política de sobrescritura.
type GenerateUseCase struct {
	txRunner   TxRunner
	locker     KeyLocker
	locations  repository.LocationRepository
	sheets     repository.StockSheetRepository
	closings   repository.CashClosingRepository
	thresholds reconciliation.Thresholds
	log        zerolog.Logger
	now        func() time.Time
}

// GenerateOption configura el caso de uso.
type GenerateOption func(*GenerateUseCase)

// WithLogger asigna el logger estructurado.
func WithLogger(l zerolog.Logger) GenerateOption {
	return func(uc *GenerateUseCase) { uc.log = l }
}

// WithClock reemplaza el reloj (marca de creación de filas).
func WithClock(now func() time.Time) GenerateOption {
	return func(uc *GenerateUseCase) { uc.now = now }
}

// WithKeyLocker reemplaza el lock por clave en proceso (p. ej. por uno distribuido en Redis).
func WithKeyLocker(l KeyLocker) GenerateOption {
	return func(uc *GenerateUseCase) { uc.locker = l }
}

// NewGenerateUseCase construye el caso de uso.
func NewGenerateUseCase(
	txRunner TxRunner,
	locations repository.LocationRepository,
	sheets repository.StockSheetRepository,
	closings repository.CashClosingRepository,
	thresholds reconciliation.Thresholds,
	opts ...GenerateOption,
) *GenerateUseCase {
	uc := &GenerateUseCase{
		txRunner:   txRunner,
		locker:     keylock.New(),
		locations:  locations,
		sheets:     sheets,
		closings:   closings,
		thresholds: thresholds,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GenerateInput parámetros de una corrida.
// HasTwoCashRegisters es lo que informa el llamador: solo se contrasta con el catálogo.
type GenerateInput struct {
	Date                   time.Time
	LocationID             int64
	Shift                  entity.Shift
	Overwrite              bool
	HasTwoCashRegisters    *bool
	ForceCashDiscrepancies bool
}

// GenerateResult resumen de lo escrito.
type GenerateResult struct {
	Key                entity.DiscrepancyKey
	Location           *entity.Location
	StockRows          int
	CashRows           int
	ForcedCashRows     int
	DeletedStockRows   int64
	DeletedCashRows    int64
	SourceStockRecords int
	SourceClosings     int
	Stock              []*entity.StockDiscrepancy
	Cash               []*entity.CashDiscrepancy
}

// Generate clasifica todo antes de tocar el almacenamiento y luego, con la clave bloqueada:
//   - sin Overwrite y con filas existentes → domain.ErrAlreadyExists, sin escrituras;
//   - con Overwrite → borra las filas de la clave y reinserta, todo en la misma transacción.
//
// Los fallos de almacenamiento se devuelven como *domain.TransactionError, ya revertidos.
// No hay reintentos: reintentar tras un borrado parcial podría aplicar la regeneración dos veces.
func (uc *GenerateUseCase) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if in.LocationID <= 0 {
		return nil, domain.Invalid("location_id requerido")
	}
	if !in.Shift.Valid() {
		return nil, domain.Invalid("turno inválido %q", in.Shift)
	}
	if in.Date.IsZero() {
		return nil, domain.Invalid("fecha requerida")
	}
	key := entity.NewDiscrepancyKey(in.Date, in.LocationID, in.Shift)
	log := uc.log.With().Str("key", key.String()).Logger()

	loc, err := uc.locations.GetByID(ctx, in.LocationID)
	if err != nil {
		return nil, &domain.TransactionError{Key: key.String(), Op: "catalog", Err: err}
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidLocation, in.LocationID)
	}
	if in.HasTwoCashRegisters != nil && *in.HasTwoCashRegisters != loc.HasTwoCashRegisters {
		log.Warn().
			Bool("informado", *in.HasTwoCashRegisters).
			Bool("catalogo", loc.HasTwoCashRegisters).
			Msg("cantidad de cajas informada no coincide con el catálogo; se usa el catálogo")
	}

	records, err := uc.sheets.ListByKey(ctx, key)
	if err != nil {
		return nil, &domain.TransactionError{Key: key.String(), Op: "read_stock_sheets", Err: err}
	}
	closings, err := uc.closings.ListByKey(ctx, key)
	if err != nil {
		return nil, &domain.TransactionError{Key: key.String(), Op: "read_cash_closings", Err: err}
	}
	if len(records) == 0 && len(closings) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSourceData, key)
	}

	stockRows, err := uc.buildStockRows(key, records)
	if err != nil {
		return nil, err
	}
	cashRows, forced, err := uc.buildCashRows(key, loc, closings, in.ForceCashDiscrepancies)
	if err != nil {
		return nil, err
	}
	if in.ForceCashDiscrepancies && len(closings) == 0 {
		log.Warn().Msg("force_cash_discrepancies sin cierres de caja cargados: no se fuerza ninguna fila")
	}

	unlock, err := uc.locker.Lock(ctx, key.String())
	if err != nil {
		return nil, &domain.TransactionError{Key: key.String(), Op: "lock", Err: err}
	}
	defer unlock()

	res := &GenerateResult{
		Key:                key,
		Location:           loc,
		StockRows:          len(stockRows),
		CashRows:           len(cashRows),
		ForcedCashRows:     forced,
		SourceStockRecords: len(records),
		SourceClosings:     len(closings),
		Stock:              stockRows,
		Cash:               cashRows,
	}

	err = uc.txRunner.Run(ctx, key, func(
		stockRepo repository.StockDiscrepancyRepository,
		cashRepo repository.CashDiscrepancyRepository,
	) error {
		existingStock, err := stockRepo.CountByKey(ctx, key)
		if err != nil {
			return txErr(key, "count_stock", err)
		}
		existingCash, err := cashRepo.CountByKey(ctx, key)
		if err != nil {
			return txErr(key, "count_cash", err)
		}
		if existingStock+existingCash > 0 {
			if !in.Overwrite {
				return fmt.Errorf("%w: %s (%d filas)", domain.ErrAlreadyExists, key, existingStock+existingCash)
			}
			if err := keepCreatedAt(ctx, key, stockRepo, cashRepo, stockRows, cashRows); err != nil {
				return err
			}
			if res.DeletedStockRows, err = stockRepo.DeleteByKey(ctx, key); err != nil {
				return txErr(key, "delete_stock", err)
			}
			if res.DeletedCashRows, err = cashRepo.DeleteByKey(ctx, key); err != nil {
				return txErr(key, "delete_cash", err)
			}
		}
		for _, d := range stockRows {
			if err := stockRepo.Create(ctx, d); err != nil {
				return txErr(key, "insert_stock", err)
			}
		}
		for _, d := range cashRows {
			if err := cashRepo.Create(ctx, d); err != nil {
				return txErr(key, "insert_cash", err)
			}
		}
		return nil
	})
	if err != nil {
		var txe *domain.TransactionError
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			log.Info().Bool("overwrite", in.Overwrite).Msg("generación rechazada: la clave ya tiene diferencias")
			if errors.As(err, &txe) {
				// Una inserción concurrente ganó la carrera (violación de índice único).
				return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, key)
			}
			return nil, err
		case errors.Is(err, domain.ErrInvalidInput):
			return nil, err
		case errors.As(err, &txe):
			log.Error().Err(err).Str("op", txe.Op).Msg("generación revertida")
			return nil, err
		default:
			log.Error().Err(err).Msg("generación revertida")
			return nil, &domain.TransactionError{Key: key.String(), Op: "tx", Err: err}
		}
	}

	log.Info().
		Bool("overwrite", in.Overwrite).
		Int("stock_rows", res.StockRows).
		Int("cash_rows", res.CashRows).
		Int("forced_cash_rows", res.ForcedCashRows).
		Int64("deleted_stock_rows", res.DeletedStockRows).
		Int64("deleted_cash_rows", res.DeletedCashRows).
		Msg("diferencias generadas")
	return res, nil
}

// buildStockRows deja una fila por producto de la planilla, también cuando la diferencia es cero.
func (uc *GenerateUseCase) buildStockRows(key entity.DiscrepancyKey, records []*entity.StockMovementRecord) ([]*entity.StockDiscrepancy, error) {
	now := uc.now().UTC()
	seen := make(map[string]bool, len(records))
	rows := make([]*entity.StockDiscrepancy, 0, len(records))
	for _, rec := range records {
		if seen[rec.ProductID] {
			return nil, domain.Invalid("producto %s duplicado en la planilla %s", rec.ProductID, key)
		}
		seen[rec.ProductID] = true

		d, err := reconciliation.ReconcileStock(rec, uc.thresholds)
		if err != nil {
			return nil, err
		}
		d.Date, d.LocationID, d.Shift = key.Date, key.LocationID, key.Shift
		d.ID = rowID(key, "stock", rec.ProductID)
		d.CreatedAt = now
		rows = append(rows, d)
	}
	return rows, nil
}

// buildCashRows clasifica cada caja por separado. Sin force, solo se escriben cajas con
// diferencia distinta de cero; con force, cada caja con cierre cargado deja su fila.
func (uc *GenerateUseCase) buildCashRows(key entity.DiscrepancyKey, loc *entity.Location, closings []*entity.CashRegisterClosing, force bool) ([]*entity.CashDiscrepancy, int, error) {
	now := uc.now().UTC()
	seen := make(map[int]bool, len(closings))
	rows := make([]*entity.CashDiscrepancy, 0, len(closings))
	forced := 0
	for _, c := range closings {
		if c.RegisterIndex >= loc.RegisterCount() {
			return nil, 0, domain.Invalid("cierre de caja %d en local %d con %d caja(s)", c.RegisterIndex, loc.ID, loc.RegisterCount())
		}
		if seen[c.RegisterIndex] {
			return nil, 0, domain.Invalid("cierre duplicado para caja %d en %s", c.RegisterIndex, key)
		}
		seen[c.RegisterIndex] = true

		d, err := reconciliation.ClassifyCash(c, uc.thresholds)
		if err != nil {
			return nil, 0, err
		}
		if d.DifferenceAmount.IsZero() {
			if !force {
				continue
			}
			d.Forced = true
			forced++
		}
		d.Date, d.LocationID, d.Shift = key.Date, key.LocationID, key.Shift
		d.ID = rowID(key, "cash", fmt.Sprint(c.RegisterIndex))
		d.CreatedAt = now
		rows = append(rows, d)
	}
	return rows, forced, nil
}

// keepCreatedAt copia la marca de creación de las filas previas con el mismo ID, así una
// regeneración sin cambios en las fuentes reescribe exactamente las mismas filas.
func keepCreatedAt(
	ctx context.Context,
	key entity.DiscrepancyKey,
	stockRepo repository.StockDiscrepancyRepository,
	cashRepo repository.CashDiscrepancyRepository,
	stockRows []*entity.StockDiscrepancy,
	cashRows []*entity.CashDiscrepancy,
) error {
	day, shift := key.Date, key.Shift
	filter := entity.DiscrepancyFilter{LocationID: key.LocationID, Date: &day, Shift: &shift}
	created := map[string]time.Time{}
	prevStock, err := stockRepo.List(ctx, filter)
	if err != nil {
		return txErr(key, "list_stock", err)
	}
	for _, d := range prevStock {
		created[d.ID] = d.CreatedAt
	}
	prevCash, err := cashRepo.List(ctx, filter)
	if err != nil {
		return txErr(key, "list_cash", err)
	}
	for _, d := range prevCash {
		created[d.ID] = d.CreatedAt
	}
	for _, d := range stockRows {
		if at, ok := created[d.ID]; ok {
			d.CreatedAt = at
		}
	}
	for _, d := range cashRows {
		if at, ok := created[d.ID]; ok {
			d.CreatedAt = at
		}
	}
	return nil
}

func rowID(key entity.DiscrepancyKey, kind, item string) string {
	return uuid.NewSHA1(rowNamespace, []byte(key.String()+"/"+kind+"/"+item)).String()
}

func txErr(key entity.DiscrepancyKey, op string, err error) error {
	return &domain.TransactionError{Key: key.String(), Op: op, Err: err}
}
