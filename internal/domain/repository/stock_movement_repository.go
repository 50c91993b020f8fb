package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementFilter filtros para leer el ledger de un producto.
// From/To acotan MovedAt (inclusive/exclusivo). Limit 0 significa sin límite.
type MovementFilter struct {
	Types      []string
	From       *time.Time
	To         *time.Time
	Reference  string
	Limit      int
	Offset     int
	Descending bool
}

// StockMovementReader lecturas del ledger. No existen Update ni Delete: el ledger es append-only.
type StockMovementReader interface {
	// EntriesForProduct devuelve los movimientos ordenados por Sequence.
	EntriesForProduct(ctx context.Context, productID string, filter MovementFilter) ([]*entity.StockMovement, error)
	// GetMovement devuelve nil, nil si no existe.
	GetMovement(ctx context.Context, id string) (*entity.StockMovement, error)
	// FindReversal devuelve el movimiento que compensa a movementID, o nil, nil.
	FindReversal(ctx context.Context, movementID string) (*entity.StockMovement, error)
}

// StockLedger es el contrato del almacén transaccional del ledger.
// Las implementaciones se obtienen atadas a una transacción (ver TxRunner).
type StockLedger interface {
	StockMovementReader

	// ReadCurrentQuantity lee el producto bloqueando su fila hasta el fin de la transacción.
	// Devuelve domain.ErrProductNotFound si no existe.
	ReadCurrentQuantity(ctx context.Context, productID string) (*entity.Product, error)

	// AppendEntryAndUpdateQuantity inserta entry y fija el stock del producto en newQuantity
	// de forma atómica. Es un compare-and-set sobre entry.PreviousStock y entry.Sequence-1:
	// si el producto cambió devuelve domain.ErrConcurrentModification.
	AppendEntryAndUpdateQuantity(ctx context.Context, entry *entity.StockMovement, newQuantity int64) error
}
