package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	CategoryID string
	Search     string // coincide con SKU o nombre
	ActiveOnly bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Update solo modifica campos que no son stock: StockQuantity y LedgerSequence
// los cambia exclusivamente StockLedger.AppendEntryAndUpdateQuantity.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*entity.Product, error)
}
