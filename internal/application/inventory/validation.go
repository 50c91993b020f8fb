package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

const (
	maxReferenceLen = 100
	maxNotesLen     = 500
)

// ValidateMovement valida la entrada antes de abrir la transacción y devuelve el sentido resuelto.
func ValidateMovement(in MovementInput) (string, error) {
	if in.ProductID == "" {
		return "", &domain.ValidationError{Field: "product_id", Reason: "es obligatorio"}
	}
	if in.Quantity <= 0 {
		return "", &domain.ValidationError{Field: "quantity", Reason: "debe ser un entero positivo"}
	}
	if in.UnitPrice != nil && in.UnitPrice.LessThan(decimal.Zero) {
		return "", &domain.ValidationError{Field: "unit_price", Reason: "no puede ser negativo"}
	}
	if len(in.Reference) > maxReferenceLen {
		return "", &domain.ValidationError{Field: "reference", Reason: "supera 100 caracteres"}
	}
	if len(in.Notes) > maxNotesLen {
		return "", &domain.ValidationError{Field: "notes", Reason: "supera 500 caracteres"}
	}
	return domaininv.ResolveDirection(in.Type, in.Direction)
}
