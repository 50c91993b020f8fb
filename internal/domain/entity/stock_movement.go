package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIn         = "in"         // entrada
	MovementTypeOut        = "out"        // salida
	MovementTypeAdjustment = "adjustment" // ajuste (sube o baja según Direction)
	MovementTypeTransfer   = "transfer"   // traslado (por defecto sale del inventario)
)

// Sentido del movimiento sobre el stock.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// StockMovement es una entrada del ledger de stock. Inmutable una vez escrita.
// ProductID es nulo si el producto fue archivado; UserID es nulo para acciones del sistema.
// Sequence ordena totalmente los movimientos de un mismo producto (1, 2, 3...).
type StockMovement struct {
	ID            string
	ProductID     *string
	Sequence      int64
	Type          string
	Direction     string
	Quantity      int64 // siempre positivo
	PreviousStock int64
	NewStock      int64
	UnitPrice     *decimal.Decimal
	TotalPrice    *decimal.Decimal
	Reference     string
	Notes         string
	ReversalOf    *string // movimiento que compensa, si es una reversión
	MovedAt       time.Time
	UserID        *string
}

// Delta devuelve el cambio con signo que el movimiento aplicó al stock.
func (m *StockMovement) Delta() int64 {
	if m.Direction == DirectionDecrease {
		return -m.Quantity
	}
	return m.Quantity
}

// Balanced indica si previous_stock más el delta da new_stock sin desbordar int64.
func (m *StockMovement) Balanced() bool {
	if m.Quantity <= 0 {
		return m.PreviousStock+m.Delta() == m.NewStock
	}
	if m.Direction == DirectionDecrease {
		return m.NewStock < m.PreviousStock && m.PreviousStock-m.Quantity == m.NewStock
	}
	return m.NewStock > m.PreviousStock && m.NewStock-m.Quantity == m.PreviousStock
}

// ProductIDValue devuelve el ID del producto o "" si es nulo.
func (m *StockMovement) ProductIDValue() string {
	if m.ProductID == nil {
		return ""
	}
	return *m.ProductID
}
