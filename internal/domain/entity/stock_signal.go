package entity

import "time"

// Estados de la señal de stock.
const (
	SignalStatusOK            = "ok"
	SignalStatusLow           = "low"
	SignalStatusCritical      = "critical"
	SignalStatusReorderNeeded = "reorder-needed"
)

// StockSignal es derivada (no se persiste): función pura de Product + configuración.
type StockSignal struct {
	ProductID         string
	CurrentQuantity   int64
	LowStockThreshold int64
	ReorderPoint      int64
	Status            string
	RequiredQuantity  int64
	EvaluatedAt       time.Time
}

// SignalEvent se emite al colaborador de notificaciones cuando cambia el estado de la señal.
type SignalEvent struct {
	ProductID        string    `json:"product_id"`
	Status           string    `json:"status"`
	PreviousStatus   string    `json:"previous_status"`
	RequiredQuantity int64     `json:"required_quantity"`
	CurrentQuantity  int64     `json:"current_quantity"`
	TriggeredAt      time.Time `json:"triggered_at"`
}
