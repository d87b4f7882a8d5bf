package entity

// Severity gravedad de una diferencia. Solo medium y high generan alerta.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) rank() int {
	switch s {
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	}
	return 0
}

// Valid indica si la severidad es conocida.
func (s Severity) Valid() bool {
	return s == SeverityNone || s == SeverityMedium || s == SeverityHigh
}

// Alert indica si la diferencia amerita alerta.
func (s Severity) Alert() bool { return s.rank() > 0 }

// MaxSeverity devuelve la mayor de las severidades.
func MaxSeverity(a, b Severity) Severity {
	if b.rank() > a.rank() {
		return b
	}
	return a
}
