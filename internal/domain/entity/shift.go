package entity

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Shift turno de trabajo de un local.
type Shift string

// Turnos válidos.
const (
	ShiftManana Shift = "mañana"
	ShiftTarde  Shift = "tarde"
)

// Valid indica si el turno es uno de los definidos.
func (s Shift) Valid() bool {
	return s == ShiftManana || s == ShiftTarde
}

// ParseShift interpreta el turno ignorando mayúsculas y tildes ("MANANA", "Mañana" -> mañana).
func ParseShift(s string) (Shift, bool) {
	switch foldAccents(strings.ToLower(strings.TrimSpace(s))) {
	case "manana":
		return ShiftManana, true
	case "tarde":
		return ShiftTarde, true
	}
	return "", false
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// DateLayout formato de fecha civil usado en claves, API y CLI.
const DateLayout = "2006-01-02"

// NormalizeDate descarta hora y zona: las diferencias se registran por fecha civil (UTC 00:00).
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate interpreta una fecha civil YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}
