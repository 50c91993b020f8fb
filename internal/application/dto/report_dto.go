package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementSummaryLine agregado por tipo y sentido.
type MovementSummaryLine struct {
	Type       string          `json:"type"`
	Direction  string          `json:"direction"`
	Movements  int64           `json:"movements"`
	Quantity   int64           `json:"quantity"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// MovementSummaryResponse resumen de movimientos de un período.
type MovementSummaryResponse struct {
	ProductID     string                `json:"product_id,omitempty"`
	From          time.Time             `json:"from"`
	To            time.Time             `json:"to"`
	Lines         []MovementSummaryLine `json:"lines"`
	TotalIn       int64                 `json:"total_in"`
	TotalOut      int64                 `json:"total_out"`
	NetChange     int64                 `json:"net_change"`
	ValueIn       decimal.Decimal       `json:"value_in"`
	ValueOut      decimal.Decimal       `json:"value_out"`
	ReorderAlerts int                   `json:"reorder_alerts"` // productos fuera de estado ok al generar el reporte
}

// RunningTotalDTO saldo acumulado tras un movimiento.
type RunningTotalDTO struct {
	MovementID string    `json:"movement_id"`
	Sequence   int64     `json:"sequence"`
	Type       string    `json:"type"`
	MovedAt    time.Time `json:"moved_at"`
	Delta      int64     `json:"delta"`
	Balance    int64     `json:"balance"`
	TotalIn    int64     `json:"total_in"`
	TotalOut   int64     `json:"total_out"`
}

// RunningTotalsResponse acumulados de un producto.
type RunningTotalsResponse struct {
	ProductID    string            `json:"product_id"`
	SKU          string            `json:"sku"`
	ProductName  string            `json:"product_name"`
	OpeningStock int64             `json:"opening_stock"`
	Items        []RunningTotalDTO `json:"items"`
}
