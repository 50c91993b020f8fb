package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MovementSummaryRow agregado crudo de movimientos por tipo y sentido.
type MovementSummaryRow struct {
	Type       string
	Direction  string
	Movements  int64
	Quantity   int64
	TotalValue decimal.Decimal
}

// AnalyticsRepository consultas de lectura sobre el ledger. No modifican datos.
type AnalyticsRepository interface {
	// SumByType agrupa los movimientos en [from, to) por tipo y sentido.
	// productID vacío considera todos los productos.
	SumByType(ctx context.Context, productID string, from, to time.Time) ([]MovementSummaryRow, error)
}
