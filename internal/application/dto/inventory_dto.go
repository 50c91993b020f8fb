package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id"`
	Type      string           `json:"type"`                // in | out | adjustment | transfer
	Direction string           `json:"direction,omitempty"` // increase | decrease (ajuste obligatorio)
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Reference string           `json:"reference,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// ReverseMovementRequest body para POST /api/inventory/movements/:id/reverse.
type ReverseMovementRequest struct {
	Notes string `json:"notes,omitempty"`
}

// MovementResponse entrada del ledger.
type MovementResponse struct {
	ID            string           `json:"id"`
	ProductID     *string          `json:"product_id"`
	Sequence      int64            `json:"sequence"`
	Type          string           `json:"type"`
	Direction     string           `json:"direction"`
	Quantity      int64            `json:"quantity"`
	PreviousStock int64            `json:"previous_stock"`
	NewStock      int64            `json:"new_stock"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice    *decimal.Decimal `json:"total_price,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	ReversalOf    *string          `json:"reversal_of,omitempty"`
	MovedAt       time.Time        `json:"moved_at"`
	UserID        *string          `json:"user_id,omitempty"`
}

// MovementListRequest query de GET /api/inventory/products/:id/movements.
type MovementListRequest struct {
	PageRequest
	Type  string `query:"type"`
	From  string `query:"from"` // RFC3339 o YYYY-MM-DD
	To    string `query:"to"`
	Order string `query:"order"` // asc | desc
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// StockSignalResponse señal derivada de un producto.
type StockSignalResponse struct {
	ProductID         string    `json:"product_id"`
	SKU               string    `json:"sku,omitempty"`
	ProductName       string    `json:"product_name,omitempty"`
	CurrentQuantity   int64     `json:"current_quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	ReorderPoint      int64     `json:"reorder_point"`
	Status            string    `json:"status"`
	RequiredQuantity  int64     `json:"required_quantity"`
	EvaluatedAt       time.Time `json:"evaluated_at"`
}

// SignalListResponse reporte de reposición.
type SignalListResponse struct {
	Items []StockSignalResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// LedgerViolationDTO eslabón roto del ledger.
type LedgerViolationDTO struct {
	MovementID string `json:"movement_id"`
	Sequence   int64  `json:"sequence"`
	Reason     string `json:"reason"`
}

// LedgerVerificationResponse resultado de GET /api/inventory/products/:id/verify.
type LedgerVerificationResponse struct {
	ProductID    string               `json:"product_id"`
	Entries      int                  `json:"entries"`
	InitialStock int64                `json:"initial_stock"`
	LedgerStock  int64                `json:"ledger_stock"`
	ProductStock int64                `json:"product_stock"`
	Consistent   bool                 `json:"consistent"`
	Violations   []LedgerViolationDTO `json:"violations"`
}
