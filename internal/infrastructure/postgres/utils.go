package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// filterClause arma el WHERE de un DiscrepancyFilter con placeholders posicionales.
func filterClause(f entity.DiscrepancyFilter) (string, []any) {
	where := []string{"location_id = $1"}
	args := []any{f.LocationID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Date != nil {
		add("date = $%d", entity.NormalizeDate(*f.Date))
	}
	if f.From != nil {
		add("date >= $%d", entity.NormalizeDate(*f.From))
	}
	if f.To != nil {
		add("date <= $%d", entity.NormalizeDate(*f.To))
	}
	if f.Shift != nil {
		add("shift = $%d", string(*f.Shift))
	}
	return strings.Join(where, " AND "), args
}

func keyArgs(key entity.DiscrepancyKey) []any {
	return []any{key.Date, key.LocationID, string(key.Shift)}
}

// dateUTC las columnas DATE vuelven como medianoche; se fuerzan a UTC como en el dominio.
func dateUTC(t time.Time) time.Time {
	return entity.NormalizeDate(t)
}
