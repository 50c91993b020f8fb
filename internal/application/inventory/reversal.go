package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ReversalReferencePrefix prefijo de la referencia de un movimiento compensatorio.
const ReversalReferencePrefix = "REV-"

// ReverseMovement corrige un movimiento con una entrada compensatoria (tipo y sentido opuestos).
// El ledger nunca se edita: la entrada original queda intacta y la reversión apunta a ella.
// Un movimiento solo puede revertirse una vez; una reversión no puede revertirse.
func (uc *RegisterMovementUseCase) ReverseMovement(ctx context.Context, movementID, userID, notes string) (*entity.StockMovement, error) {
	if movementID == "" {
		err := &domain.ValidationError{Field: "movement_id", Reason: "es obligatorio"}
		uc.reject(ctx, "", userID, attemptedMovement{}, err)
		return nil, err
	}
	if len(notes) > maxNotesLen {
		err := &domain.ValidationError{Field: "notes", Reason: "supera 500 caracteres"}
		uc.reject(ctx, "", userID, attemptedMovement{ReversalOf: &movementID}, err)
		return nil, err
	}

	original, err := uc.movements.GetMovement(ctx, movementID)
	if err != nil {
		err = classifyStoreError("get movement", err)
		uc.reject(ctx, "", userID, attemptedMovement{ReversalOf: &movementID}, err)
		return nil, err
	}
	if original == nil {
		uc.reject(ctx, "", userID, attemptedMovement{ReversalOf: &movementID}, domain.ErrMovementNotFound)
		return nil, domain.ErrMovementNotFound
	}
	if original.ReversalOf != nil {
		err := &domain.ValidationError{Field: "movement_id", Reason: "una reversión no puede revertirse"}
		uc.reject(ctx, original.ProductIDValue(), userID, attemptedMovement{ReversalOf: &movementID}, err)
		return nil, err
	}
	if original.ProductID == nil {
		uc.reject(ctx, "", userID, attemptedMovement{ReversalOf: &movementID}, domain.ErrProductNotFound)
		return nil, domain.ErrProductNotFound
	}

	originalID := original.ID
	plan := plannedMovement{
		productID:  *original.ProductID,
		typ:        domaininv.CompensatingType(original.Type),
		direction:  domaininv.InverseDirection(original.Direction),
		quantity:   original.Quantity,
		unitPrice:  original.UnitPrice,
		reference:  ReversalReferencePrefix + original.ID,
		notes:      notes,
		userID:     userID,
		reversalOf: &originalID,
		// Bajo el bloqueo del producto: dos reversiones concurrentes del mismo movimiento se serializan.
		guard: func(ctx context.Context, ledger repository.StockLedger) error {
			existing, err := ledger.FindReversal(ctx, originalID)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrAlreadyReversed
			}
			return nil
		},
	}
	return uc.execute(ctx, plan)
}
