package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// StockQuantity es autoritativo y solo lo modifica el motor de movimientos; siempre coincide con
// el NewStock del último movimiento del ledger (o con el valor inicial si no hay movimientos).
// LedgerSequence es la secuencia del último movimiento aplicado (0 si no hay).
// LowStockThreshold y ReorderPoint son overrides opcionales del producto.
type Product struct {
	ID                string
	CategoryID        string
	SKU               string
	Name              string
	Description       string
	UnitPrice         decimal.Decimal
	StockQuantity     int64
	LedgerSequence    int64
	LowStockThreshold *int64
	ReorderPoint      *int64
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
