package entity

import (
	"fmt"
	"time"
)

// DiscrepancyKey identifica una corrida de generación: fecha, local y turno.
type DiscrepancyKey struct {
	Date       time.Time
	LocationID int64
	Shift      Shift
}

// NewDiscrepancyKey construye la clave con la fecha normalizada.
func NewDiscrepancyKey(date time.Time, locationID int64, shift Shift) DiscrepancyKey {
	return DiscrepancyKey{Date: NormalizeDate(date), LocationID: locationID, Shift: shift}
}

// String forma canónica "2006-01-02/<local>/<turno>", usada para locks y logs.
func (k DiscrepancyKey) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Date.Format(DateLayout), k.LocationID, k.Shift)
}

// Matches indica si una fila (fecha, local, turno) pertenece a la clave.
func (k DiscrepancyKey) Matches(date time.Time, locationID int64, shift Shift) bool {
	return k.LocationID == locationID && k.Shift == shift && k.Date.Equal(NormalizeDate(date))
}

// DiscrepancyFilter criterios de lectura del registro de diferencias.
// Date filtra un día exacto; From/To un rango inclusivo. Shift nil = ambos turnos.
type DiscrepancyFilter struct {
	LocationID int64
	Date       *time.Time
	From       *time.Time
	To         *time.Time
	Shift      *Shift
}

// Accepts aplica el filtro en memoria (mismo criterio que las consultas SQL).
func (f DiscrepancyFilter) Accepts(date time.Time, locationID int64, shift Shift) bool {
	if locationID != f.LocationID {
		return false
	}
	d := NormalizeDate(date)
	if f.Date != nil && !d.Equal(NormalizeDate(*f.Date)) {
		return false
	}
	if f.From != nil && d.Before(NormalizeDate(*f.From)) {
		return false
	}
	if f.To != nil && d.After(NormalizeDate(*f.To)) {
		return false
	}
	if f.Shift != nil && *f.Shift != shift {
		return false
	}
	return true
}
