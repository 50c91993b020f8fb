package audit

import "github.com/jhoicas/inventario-ledger/internal/domain/entity"

// StockSnapshot campos de stock auditados en cada movimiento.
type StockSnapshot struct {
	StockQuantity  int64 `json:"stock_quantity"`
	LedgerSequence int64 `json:"ledger_sequence"`
}

// ProductSnapshot campos mutables de un producto, sin relaciones.
type ProductSnapshot struct {
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	CategoryID        string `json:"category_id,omitempty"`
	UnitPrice         string `json:"unit_price"`
	StockQuantity     int64  `json:"stock_quantity"`
	LowStockThreshold *int64 `json:"low_stock_threshold,omitempty"`
	ReorderPoint      *int64 `json:"reorder_point,omitempty"`
	Active            bool   `json:"active"`
}

// SnapshotProduct toma el snapshot de p; nil si p es nil.
func SnapshotProduct(p *entity.Product) *ProductSnapshot {
	if p == nil {
		return nil
	}
	return &ProductSnapshot{
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		UnitPrice:         p.UnitPrice.StringFixed(2),
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		ReorderPoint:      p.ReorderPoint,
		Active:            p.Active,
	}
}
