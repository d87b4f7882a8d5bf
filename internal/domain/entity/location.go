package entity

import "time"

// Location representa un local del catálogo (sucursal con una o dos cajas físicas).
type Location struct {
	ID                  int64
	Name                string
	HasTwoCashRegisters bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RegisterCount cantidad de cajas físicas del local.
func (l *Location) RegisterCount() int {
	if l.HasTwoCashRegisters {
		return 2
	}
	return 1
}
