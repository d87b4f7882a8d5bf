// Package memory implementa el registro de diferencias y las fuentes en memoria.
// Se usa en tests y con STORAGE_DRIVER=memory; en producción el mismo contrato lo cumple PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/internal/domain/repository"
	"github.com/jhoicas/conciliacion-api/pkg/keylock"
)

var _ reconciliation.TxRunner = (*Ledger)(nil)
var _ repository.StockDiscrepancyRepository = (*StockRepo)(nil)
var _ repository.CashDiscrepancyRepository = (*CashRepo)(nil)

// Ledger registro de diferencias en memoria.
//
// Las transacciones toman un lock por clave y acumulan borrados e inserciones en un área
// de staging; recién al confirmar se aplican bajo el mutex global. Si fn falla no se aplica nada.
type Ledger struct {
	mu    sync.RWMutex
	stock []*entity.StockDiscrepancy
	cash  []*entity.CashDiscrepancy
	locks *keylock.Locker
}

// NewLedger construye un registro vacío.
func NewLedger() *Ledger {
	return &Ledger{locks: keylock.New()}
}

// Stock repositorio de diferencias de stock sobre lo confirmado.
func (l *Ledger) Stock() *StockRepo { return &StockRepo{l: l} }

// Cash repositorio de diferencias de caja sobre lo confirmado.
func (l *Ledger) Cash() *CashRepo { return &CashRepo{l: l} }

// Run ejecuta fn con repositorios atados a una transacción exclusiva para key.
func (l *Ledger) Run(ctx context.Context, key entity.DiscrepancyKey, fn func(
	stockRepo repository.StockDiscrepancyRepository,
	cashRepo repository.CashDiscrepancyRepository,
) error) error {
	unlock, err := l.locks.Lock(ctx, key.String())
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer unlock()

	tx := &ledgerTx{key: key}
	if err := fn(&StockRepo{l: l, tx: tx}, &CashRepo{l: l, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	l.commit(tx)
	return nil
}

type ledgerTx struct {
	key          entity.DiscrepancyKey
	stockDeleted bool
	cashDeleted  bool
	stock        []*entity.StockDiscrepancy
	cash         []*entity.CashDiscrepancy
}

func (l *Ledger) commit(tx *ledgerTx) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tx.stockDeleted {
		l.stock = slices.DeleteFunc(l.stock, func(d *entity.StockDiscrepancy) bool {
			return tx.key.Matches(d.Date, d.LocationID, d.Shift)
		})
	}
	if tx.cashDeleted {
		l.cash = slices.DeleteFunc(l.cash, func(d *entity.CashDiscrepancy) bool {
			return tx.key.Matches(d.Date, d.LocationID, d.Shift)
		})
	}
	l.stock = append(l.stock, tx.stock...)
	l.cash = append(l.cash, tx.cash...)
}

func checkTxKey(tx *ledgerTx, key entity.DiscrepancyKey) error {
	if tx != nil && !tx.key.Matches(key.Date, key.LocationID, key.Shift) {
		return fmt.Errorf("clave %s fuera de la transacción %s", key, tx.key)
	}
	return nil
}

func newestFirst(dateA, dateB, createdA, createdB time.Time) int {
	if c := dateB.Compare(dateA); c != 0 {
		return c
	}
	return createdB.Compare(createdA)
}

// ── Stock ─────────────────────────────────────────────────────────────────────

// StockRepo diferencias de stock (confirmadas si tx es nil, vista transaccional si no).
type StockRepo struct {
	l  *Ledger
	tx *ledgerTx
}

func (r *StockRepo) visible() []*entity.StockDiscrepancy {
	r.l.mu.RLock()
	out := make([]*entity.StockDiscrepancy, 0, len(r.l.stock))
	for _, d := range r.l.stock {
		if r.tx != nil && r.tx.stockDeleted && r.tx.key.Matches(d.Date, d.LocationID, d.Shift) {
			continue
		}
		out = append(out, d)
	}
	r.l.mu.RUnlock()
	if r.tx != nil {
		out = append(out, r.tx.stock...)
	}
	return out
}

// Create inserta una copia de la fila; (clave, producto) repetido devuelve domain.ErrAlreadyExists.
func (r *StockRepo) Create(_ context.Context, d *entity.StockDiscrepancy) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := checkTxKey(r.tx, d.Key()); err != nil {
		return err
	}
	row := cloneStock(d)
	row.Date = entity.NormalizeDate(row.Date)
	for _, e := range r.visible() {
		if e.ProductID == row.ProductID && row.Key().Matches(e.Date, e.LocationID, e.Shift) {
			return fmt.Errorf("%w: producto %s en %s", domain.ErrAlreadyExists, row.ProductID, row.Key())
		}
	}
	if r.tx != nil {
		r.tx.stock = append(r.tx.stock, row)
		return nil
	}
	r.l.mu.Lock()
	r.l.stock = append(r.l.stock, row)
	r.l.mu.Unlock()
	return nil
}

// CountByKey cantidad de filas de la clave.
func (r *StockRepo) CountByKey(_ context.Context, key entity.DiscrepancyKey) (int, error) {
	n := 0
	for _, d := range r.visible() {
		if key.Matches(d.Date, d.LocationID, d.Shift) {
			n++
		}
	}
	return n, nil
}

// DeleteByKey borra las filas de la clave y devuelve cuántas había.
func (r *StockRepo) DeleteByKey(ctx context.Context, key entity.DiscrepancyKey) (int64, error) {
	if err := checkTxKey(r.tx, key); err != nil {
		return 0, err
	}
	n, _ := r.CountByKey(ctx, key)
	if r.tx != nil {
		r.tx.stockDeleted = true
		r.tx.stock = nil
		return int64(n), nil
	}
	r.l.mu.Lock()
	r.l.stock = slices.DeleteFunc(r.l.stock, func(d *entity.StockDiscrepancy) bool {
		return key.Matches(d.Date, d.LocationID, d.Shift)
	})
	r.l.mu.Unlock()
	return int64(n), nil
}

// List filas que cumplen el filtro, fecha desc y creación desc.
func (r *StockRepo) List(_ context.Context, f entity.DiscrepancyFilter) ([]*entity.StockDiscrepancy, error) {
	var out []*entity.StockDiscrepancy
	for _, d := range r.visible() {
		if f.Accepts(d.Date, d.LocationID, d.Shift) {
			out = append(out, cloneStock(d))
		}
	}
	slices.SortStableFunc(out, func(a, b *entity.StockDiscrepancy) int {
		return newestFirst(a.Date, b.Date, a.CreatedAt, b.CreatedAt)
	})
	return out, nil
}

// LastDate fecha más reciente con filas para el local.
func (r *StockRepo) LastDate(_ context.Context, locationID int64) (*time.Time, error) {
	var last *time.Time
	for _, d := range r.visible() {
		if d.LocationID == locationID && (last == nil || d.Date.After(*last)) {
			t := d.Date
			last = &t
		}
	}
	return last, nil
}

func cloneStock(d *entity.StockDiscrepancy) *entity.StockDiscrepancy {
	c := *d
	if d.DifferencePercent != nil {
		pct := *d.DifferencePercent
		c.DifferencePercent = &pct
	}
	return &c
}

// ── Caja ──────────────────────────────────────────────────────────────────────

// CashRepo diferencias de caja (confirmadas si tx es nil, vista transaccional si no).
type CashRepo struct {
	l  *Ledger
	tx *ledgerTx
}

func (r *CashRepo) visible() []*entity.CashDiscrepancy {
	r.l.mu.RLock()
	out := make([]*entity.CashDiscrepancy, 0, len(r.l.cash))
	for _, d := range r.l.cash {
		if r.tx != nil && r.tx.cashDeleted && r.tx.key.Matches(d.Date, d.LocationID, d.Shift) {
			continue
		}
		out = append(out, d)
	}
	r.l.mu.RUnlock()
	if r.tx != nil {
		out = append(out, r.tx.cash...)
	}
	return out
}

// Create inserta una copia de la fila; (clave, caja) repetido devuelve domain.ErrAlreadyExists.
func (r *CashRepo) Create(_ context.Context, d *entity.CashDiscrepancy) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := checkTxKey(r.tx, d.Key()); err != nil {
		return err
	}
	row := *d
	row.Date = entity.NormalizeDate(row.Date)
	for _, e := range r.visible() {
		if e.RegisterIndex == row.RegisterIndex && row.Key().Matches(e.Date, e.LocationID, e.Shift) {
			return fmt.Errorf("%w: caja %d en %s", domain.ErrAlreadyExists, row.RegisterIndex, row.Key())
		}
	}
	if r.tx != nil {
		r.tx.cash = append(r.tx.cash, &row)
		return nil
	}
	r.l.mu.Lock()
	r.l.cash = append(r.l.cash, &row)
	r.l.mu.Unlock()
	return nil
}

// CountByKey cantidad de filas de la clave.
func (r *CashRepo) CountByKey(_ context.Context, key entity.DiscrepancyKey) (int, error) {
	n := 0
	for _, d := range r.visible() {
		if key.Matches(d.Date, d.LocationID, d.Shift) {
			n++
		}
	}
	return n, nil
}

// DeleteByKey borra las filas de la clave y devuelve cuántas había.
func (r *CashRepo) DeleteByKey(ctx context.Context, key entity.DiscrepancyKey) (int64, error) {
	if err := checkTxKey(r.tx, key); err != nil {
		return 0, err
	}
	n, _ := r.CountByKey(ctx, key)
	if r.tx != nil {
		r.tx.cashDeleted = true
		r.tx.cash = nil
		return int64(n), nil
	}
	r.l.mu.Lock()
	r.l.cash = slices.DeleteFunc(r.l.cash, func(d *entity.CashDiscrepancy) bool {
		return key.Matches(d.Date, d.LocationID, d.Shift)
	})
	r.l.mu.Unlock()
	return int64(n), nil
}

// List filas que cumplen el filtro, fecha desc y creación desc.
func (r *CashRepo) List(_ context.Context, f entity.DiscrepancyFilter) ([]*entity.CashDiscrepancy, error) {
	var out []*entity.CashDiscrepancy
	for _, d := range r.visible() {
		if f.Accepts(d.Date, d.LocationID, d.Shift) {
			c := *d
			out = append(out, &c)
		}
	}
	slices.SortStableFunc(out, func(a, b *entity.CashDiscrepancy) int {
		return newestFirst(a.Date, b.Date, a.CreatedAt, b.CreatedAt)
	})
	return out, nil
}

// LastDate fecha más reciente con filas para el local.
func (r *CashRepo) LastDate(_ context.Context, locationID int64) (*time.Time, error) {
	var last *time.Time
	for _, d := range r.visible() {
		if d.LocationID == locationID && (last == nil || d.Date.After(*last)) {
			t := d.Date
			last = &t
		}
	}
	return last, nil
}
