// Package notify entrega los cambios de señal de stock a los canales configurados.
// La entrega es al menos una vez por cambio observado: no hay deduplicación en destino.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var (
	_ inventory.SignalEmitter = (*LogEmitter)(nil)
	_ inventory.SignalEmitter = (*MultiEmitter)(nil)
)

// LogEmitter escribe cada evento en el log. Sirve de canal mínimo cuando no hay otros.
type LogEmitter struct {
	log zerolog.Logger
}

// NewLogEmitter construye el emisor de log.
func NewLogEmitter(log zerolog.Logger) *LogEmitter {
	return &LogEmitter{log: log.With().Str("component", "notify").Logger()}
}

func (e *LogEmitter) Emit(_ context.Context, ev entity.SignalEvent) error {
	e.log.Info().
		Str("product_id", ev.ProductID).
		Str("status", ev.Status).
		Str("previous_status", ev.PreviousStatus).
		Int64("current_quantity", ev.CurrentQuantity).
		Int64("required_quantity", ev.RequiredQuantity).
		Time("triggered_at", ev.TriggeredAt).
		Msg("cambio de señal de stock")
	return nil
}

// MultiEmitter reparte el evento a todos los canales; un canal caído no bloquea a los demás.
type MultiEmitter struct {
	emitters []inventory.SignalEmitter
}

// NewMultiEmitter ignora los emisores nil.
func NewMultiEmitter(emitters ...inventory.SignalEmitter) *MultiEmitter {
	m := &MultiEmitter{}
	for _, e := range emitters {
		if e != nil {
			m.emitters = append(m.emitters, e)
		}
	}
	return m
}

// Emit devuelve todos los errores de los canales unidos con errors.Join.
func (m *MultiEmitter) Emit(ctx context.Context, ev entity.SignalEvent) error {
	var errs []error
	for i, e := range m.emitters {
		if err := e.Emit(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("canal %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Len número de canales activos.
func (m *MultiEmitter) Len() int { return len(m.emitters) }
