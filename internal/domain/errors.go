package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	ErrProductNotFound  = fmt.Errorf("producto: %w", ErrNotFound)
	ErrMovementNotFound = fmt.Errorf("movimiento: %w", ErrNotFound)

	// ErrConcurrentModification: el stock del producto cambió entre la lectura y la escritura.
	ErrConcurrentModification = errors.New("el stock del producto cambió durante la operación")
	// ErrPersistence: el almacenamiento no pudo confirmar la operación.
	ErrPersistence     = errors.New("error de persistencia")
	ErrAlreadyReversed = fmt.Errorf("el movimiento ya fue revertido: %w", ErrConflict)
	ErrLedgerImmutable = errors.New("los movimientos de stock son inmutables")
)

// ValidationError describe una entrada rechazada antes de abrir la transacción.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s %s", e.Field, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// InsufficientStockError rechazo de negocio: la salida dejaría el stock en negativo.
type InsufficientStockError struct {
	ProductID string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.ProductID, e.Available, e.Requested)
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError envuelve fallos del almacenamiento (incluye timeouts del contexto).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia (%s): %v", e.Op, e.Err)
}

// Unwrap expone ErrPersistence y la causa original.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
