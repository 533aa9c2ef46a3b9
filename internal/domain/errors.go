package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrLockTimeout  = errors.New("tiempo de espera agotado al bloquear el centro")
	ErrStore        = errors.New("fallo de persistencia")
)

// ReasonInvalidCapacity motivo fijo de RiskError cuando el centro no tiene capacidad válida.
const ReasonInvalidCapacity = "invalid capacity"

// ValidationError indica un campo de movimiento inválido. Se evalúa antes de tomar el bloqueo.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// StoreError envuelve un fallo del almacén; la entrada no se considera escrita.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError construye un StoreError para la operación op.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStore).
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// RiskError resultado estructurado del motor de riesgo cuando la capacidad falta o es <= 0.
// No lleva cifras: el llamador solo necesita saber qué centro está mal configurado.
type RiskError struct {
	FacilityID string
	Reason     string
}

func (e *RiskError) Error() string {
	return fmt.Sprintf("centro %s: %s", e.FacilityID, e.Reason)
}
