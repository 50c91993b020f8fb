package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP a ApplyMovement.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	m, err := uc.ApplyMovement(ctx, MovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Direction: in.Direction,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Reference: in.Reference,
		Notes:     in.Notes,
		UserID:    userID,
	})
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(m)
	return &out, nil
}

// ReverseMovementFromRequest adapta el request HTTP a ReverseMovement.
func (uc *RegisterMovementUseCase) ReverseMovementFromRequest(ctx context.Context, movementID, userID string, in dto.ReverseMovementRequest) (*dto.MovementResponse, error) {
	m, err := uc.ReverseMovement(ctx, movementID, userID, in.Notes)
	if err != nil {
		return nil, err
	}
	out := ToMovementResponse(m)
	return &out, nil
}

// ToMovementResponse convierte una entrada del ledger en DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Sequence:      m.Sequence,
		Type:          m.Type,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		UnitPrice:     m.UnitPrice,
		TotalPrice:    m.TotalPrice,
		Reference:     m.Reference,
		Notes:         m.Notes,
		ReversalOf:    m.ReversalOf,
		MovedAt:       m.MovedAt,
		UserID:        m.UserID,
	}
}
