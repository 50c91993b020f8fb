package inventory

import (
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Causas de rechazo, usadas en métricas, auditoría y códigos HTTP.
const (
	ReasonValidation             = "validation"
	ReasonNotFound               = "not_found"
	ReasonInsufficientStock      = "insufficient_stock"
	ReasonConcurrentModification = "concurrent_modification"
	ReasonAlreadyReversed        = "already_reversed"
	ReasonPersistence            = "persistence"
	ReasonInternal               = "internal"
)

// ErrorReason clasifica err según la taxonomía de errores del motor.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return ReasonValidation
	case errors.Is(err, domain.ErrInsufficientStock):
		return ReasonInsufficientStock
	case errors.Is(err, domain.ErrAlreadyReversed):
		return ReasonAlreadyReversed
	case errors.Is(err, domain.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, domain.ErrConcurrentModification):
		return ReasonConcurrentModification
	case errors.Is(err, domain.ErrPersistence):
		return ReasonPersistence
	}
	return ReasonInternal
}
