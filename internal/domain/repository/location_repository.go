package repository

import (
	"context"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

// LocationRepository catálogo de locales.
type LocationRepository interface {
	// GetByID devuelve nil, nil si el local no existe.
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}
