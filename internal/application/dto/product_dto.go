package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// InitialStock fija el stock de apertura; los cambios posteriores solo entran por movimientos.
type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=100"`
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	Description       string          `json:"description"`
	CategoryID        string          `json:"category_id"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	InitialStock      int64           `json:"initial_stock"`
	LowStockThreshold *int64          `json:"low_stock_threshold"`
	ReorderPoint      *int64          `json:"reorder_point"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string          `json:"description"`
	CategoryID        *string          `json:"category_id"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	LowStockThreshold *int64           `json:"low_stock_threshold"`
	ReorderPoint      *int64           `json:"reorder_point"`
	Active            *bool            `json:"active"`
}

// ProductListRequest query de GET /api/products.
type ProductListRequest struct {
	PageRequest
	CategoryID string `query:"category_id"`
	Search     string `query:"search"`
	ActiveOnly bool   `query:"active_only"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	CategoryID        string          `json:"category_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	StockQuantity     int64           `json:"stock_quantity"`
	LedgerSequence    int64           `json:"ledger_sequence"`
	LowStockThreshold *int64          `json:"low_stock_threshold,omitempty"`
	ReorderPoint      *int64          `json:"reorder_point,omitempty"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
