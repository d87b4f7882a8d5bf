package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput = errors.New("entrada inválida")

	// Taxonomía de la conciliación stock-caja.
	ErrAlreadyExists        = errors.New("ya existen diferencias generadas para la clave")
	ErrNoSourceData         = errors.New("no hay planillas de stock ni cierres de caja para la clave")
	ErrTransaction          = errors.New("fallo la escritura del registro de diferencias")
	ErrInvalidLocation      = errors.New("local inexistente en el catálogo")
	ErrComputationAssertion = errors.New("estado de compensación inalcanzable")
)

// TransactionError envuelve la causa de un fallo de almacenamiento durante la generación.
// La transacción ya fue revertida cuando se devuelve.
type TransactionError struct {
	Key string // clave fecha/local/turno
	Op  string // operación que falló (begin, delete, insert, commit...)
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transacción %s (%s): %v", e.Key, e.Op, e.Err)
}

// Unwrap expone la causa original.
func (e *TransactionError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrTransaction).
func (e *TransactionError) Is(target error) bool { return target == ErrTransaction }

// Invalid devuelve un error de validación con detalle, comparable con ErrInvalidInput.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
