// Package inventory contiene los servicios de dominio puros del ledger de stock:
// regla de signo, totales monetarios, evaluación de señales y verificación de la cadena.
package inventory

import (
	"math"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ResolveDirection determina el sentido del movimiento según su tipo.
// IN siempre suma y OUT siempre resta; ADJUSTMENT exige sentido explícito;
// TRANSFER sale del inventario salvo que se indique "increase" (traslado entrante).
func ResolveDirection(movementType, direction string) (string, error) {
	switch movementType {
	case entity.MovementTypeIn:
		if direction != "" && direction != entity.DirectionIncrease {
			return "", &domain.ValidationError{Field: "direction", Reason: "no aplica a entradas"}
		}
		return entity.DirectionIncrease, nil
	case entity.MovementTypeOut:
		if direction != "" && direction != entity.DirectionDecrease {
			return "", &domain.ValidationError{Field: "direction", Reason: "no aplica a salidas"}
		}
		return entity.DirectionDecrease, nil
	case entity.MovementTypeAdjustment:
		if !validDirection(direction) {
			return "", &domain.ValidationError{Field: "direction", Reason: "debe ser increase o decrease"}
		}
		return direction, nil
	case entity.MovementTypeTransfer:
		if direction == "" {
			return entity.DirectionDecrease, nil
		}
		if !validDirection(direction) {
			return "", &domain.ValidationError{Field: "direction", Reason: "debe ser increase o decrease"}
		}
		return direction, nil
	}
	return "", &domain.ValidationError{Field: "type", Reason: "tipo de movimiento desconocido"}
}

func validDirection(d string) bool {
	return d == entity.DirectionIncrease || d == entity.DirectionDecrease
}

// NextStock aplica la regla de signo. Devuelve domain.ErrInsufficientStock si el
// resultado sería negativo y un *domain.ValidationError si excede int64.
func NextStock(previous int64, direction string, quantity int64) (int64, error) {
	if direction == entity.DirectionDecrease {
		if quantity > previous {
			return 0, domain.ErrInsufficientStock
		}
		return previous - quantity, nil
	}
	if quantity > math.MaxInt64-previous {
		return 0, &domain.ValidationError{Field: "quantity", Reason: "el stock resultante excede el máximo representable"}
	}
	return previous + quantity, nil
}

// InverseDirection devuelve el sentido opuesto.
func InverseDirection(direction string) string {
	if direction == entity.DirectionDecrease {
		return entity.DirectionIncrease
	}
	return entity.DirectionDecrease
}

// CompensatingType devuelve el tipo del movimiento que compensa a movementType.
func CompensatingType(movementType string) string {
	switch movementType {
	case entity.MovementTypeIn:
		return entity.MovementTypeOut
	case entity.MovementTypeOut:
		return entity.MovementTypeIn
	}
	return movementType
}
