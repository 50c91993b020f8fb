package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando el ledger atado a esa tx.
// Si fn devuelve error (o ctx se cancela antes del commit) no queda ningún cambio aplicado.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, ledger repository.StockLedger) error) error
}

// ThresholdProvider acceso tipado a los umbrales efectivos de un producto.
type ThresholdProvider interface {
	LowStockThreshold(ctx context.Context, product *entity.Product) int64
	ReorderPoint(ctx context.Context, product *entity.Product) int64
}

// SignalEmitter colaborador de notificaciones. Entrega at-least-once.
type SignalEmitter interface {
	Emit(ctx context.Context, event entity.SignalEvent) error
}

// AuditSink destino de auditoría (audit.Recorder en producción).
type AuditSink interface {
	Record(ctx context.Context, e audit.Entry)
}

// Metrics observador del motor.
type Metrics interface {
	MovementApplied(movementType string, elapsed time.Duration)
	MovementRejected(reason string)
	ConcurrencyRetry()
	SignalEmitted(status string)
}

type nopMetrics struct{}

func (nopMetrics) MovementApplied(string, time.Duration) {}
func (nopMetrics) MovementRejected(string)               {}
func (nopMetrics) ConcurrencyRetry()                     {}
func (nopMetrics) SignalEmitted(string)                  {}

type nopAudit struct{}

func (nopAudit) Record(context.Context, audit.Entry) {}
