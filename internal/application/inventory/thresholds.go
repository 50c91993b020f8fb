package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ConfigThresholds resuelve umbrales: override del producto, luego de su categoría,
// luego los valores globales de configuración.
type ConfigThresholds struct {
	lowStock     int64
	reorderPoint int64
	categories   repository.CategoryRepository
	log          zerolog.Logger
}

// NewConfigThresholds construye el proveedor. categories puede ser nil.
// Un umbral global <= 0 toma el valor por defecto; un reorderPoint <= 0 toma el doble del umbral.
func NewConfigThresholds(lowStock, reorderPoint int64, categories repository.CategoryRepository, log zerolog.Logger) *ConfigThresholds {
	if lowStock <= 0 {
		lowStock = domaininv.DefaultLowStockThreshold
	}
	if reorderPoint <= 0 {
		reorderPoint = 2 * lowStock
	}
	return &ConfigThresholds{lowStock: lowStock, reorderPoint: reorderPoint, categories: categories, log: log}
}

// LowStockThreshold umbral de stock bajo efectivo.
func (t *ConfigThresholds) LowStockThreshold(ctx context.Context, p *entity.Product) int64 {
	if p != nil && p.LowStockThreshold != nil {
		return *p.LowStockThreshold
	}
	if c := t.category(ctx, p); c != nil && c.LowStockThreshold != nil {
		return *c.LowStockThreshold
	}
	return t.lowStock
}

// ReorderPoint punto de reorden efectivo.
func (t *ConfigThresholds) ReorderPoint(ctx context.Context, p *entity.Product) int64 {
	if p != nil && p.ReorderPoint != nil {
		return *p.ReorderPoint
	}
	if c := t.category(ctx, p); c != nil && c.ReorderPoint != nil {
		return *c.ReorderPoint
	}
	return t.reorderPoint
}

func (t *ConfigThresholds) category(ctx context.Context, p *entity.Product) *entity.Category {
	if t.categories == nil || p == nil || p.CategoryID == "" {
		return nil
	}
	c, err := t.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		t.log.Warn().Err(err).Str("category_id", p.CategoryID).Msg("no se pudo leer la categoría; se usan umbrales globales")
		return nil
	}
	return c
}

func thresholdsFor(ctx context.Context, tp ThresholdProvider, p *entity.Product) domaininv.Thresholds {
	return domaininv.Thresholds{
		LowStock:     tp.LowStockThreshold(ctx, p),
		ReorderPoint: tp.ReorderPoint(ctx, p),
	}
}
