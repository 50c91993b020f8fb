package inventory

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// DefaultLowStockThreshold último recurso cuando la configuración no define el umbral.
const DefaultLowStockThreshold int64 = 10

// Thresholds umbrales efectivos de un producto.
type Thresholds struct {
	LowStock     int64
	ReorderPoint int64
}

// EvaluateStatus aplica la política de señales:
//
//	critical        q == 0
//	low             0 < q <= lowStock
//	reorder-needed  q <= reorderPoint
//	ok              en otro caso
//
// required = max(0, reorderPoint - q).
func EvaluateStatus(quantity int64, th Thresholds) (status string, required int64) {
	switch {
	case quantity <= 0:
		status = entity.SignalStatusCritical
	case quantity <= th.LowStock:
		status = entity.SignalStatusLow
	case quantity <= th.ReorderPoint:
		status = entity.SignalStatusReorderNeeded
	default:
		status = entity.SignalStatusOK
	}
	required = th.ReorderPoint - quantity
	if required < 0 {
		required = 0
	}
	return status, required
}

// EvaluateSignal construye la señal de un producto para una cantidad dada.
func EvaluateSignal(productID string, quantity int64, th Thresholds, at time.Time) entity.StockSignal {
	status, required := EvaluateStatus(quantity, th)
	return entity.StockSignal{
		ProductID:         productID,
		CurrentQuantity:   quantity,
		LowStockThreshold: th.LowStock,
		ReorderPoint:      th.ReorderPoint,
		Status:            status,
		RequiredQuantity:  required,
		EvaluatedAt:       at,
	}
}
