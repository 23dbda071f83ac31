package ledger

import "fmt"

// Taxonomía de errores del ledger. Los handlers los mapean a códigos
// HTTP con errors.As; ninguno se reintenta ni se silencia.

// ValidationError nombra el campo ofensivo y el motivo del rechazo.
type ValidationError struct {
	Campo  string
	Motivo string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s: %s", e.Campo, e.Motivo)
}

// NotFoundError indica que la entidad u operando no existe.
type NotFoundError struct {
	Entidad string
	Clave   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no existe %s %s", e.Entidad, e.Clave)
}

// ConflictError indica un estado que no admite la operación pedida
// (asignación finalizada, doble vigencia, fechas incoherentes).
// Se reporta, nunca se auto-resuelve.
type ConflictError struct {
	Motivo string
}

func (e *ConflictError) Error() string {
	return "conflicto: " + e.Motivo
}

// StorageError envuelve una falla de la base; la transacción
// escritura+auditoría ya fue revertida por completo.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "almacenamiento: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
