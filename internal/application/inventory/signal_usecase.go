package inventory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

// SignalUseCase deriva las señales de stock y notifica los cambios de estado.
type SignalUseCase struct {
	products   repository.ProductRepository
	thresholds ThresholdProvider
	emitter    SignalEmitter
	tracker    *SignalTracker
	clock      clock.Clock
	log        zerolog.Logger
	metrics    Metrics
}

// NewSignalUseCase construye el servicio. emitter y metrics pueden ser nil.
func NewSignalUseCase(
	products repository.ProductRepository,
	thresholds ThresholdProvider,
	emitter SignalEmitter,
	clk clock.Clock,
	log zerolog.Logger,
	metrics Metrics,
) *SignalUseCase {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &SignalUseCase{
		products:   products,
		thresholds: thresholds,
		emitter:    emitter,
		tracker:    NewSignalTracker(),
		clock:      clk,
		log:        log.With().Str("component", "signals").Logger(),
		metrics:    metrics,
	}
}

// GetCurrentSignal evalúa la señal con el último stock confirmado. No guarda estado ni notifica.
func (uc *SignalUseCase) GetCurrentSignal(ctx context.Context, productID string) (*entity.StockSignal, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "es obligatorio"}
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, classifyStoreError("get product", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	sig := uc.Evaluate(ctx, p)
	return &sig, nil
}

// Evaluate señal de p con sus umbrales efectivos.
func (uc *SignalUseCase) Evaluate(ctx context.Context, p *entity.Product) entity.StockSignal {
	return domaininv.EvaluateSignal(p.ID, p.StockQuantity, thresholdsFor(ctx, uc.thresholds, p), uc.clock.Now())
}

// ObserveMovement reevalúa la señal tras un movimiento confirmado y emite un evento si el
// estado difiere del último entregado para el producto. Si Emit falla el cambio queda sin
// confirmar y se vuelve a emitir con el próximo movimiento del producto.
func (uc *SignalUseCase) ObserveMovement(ctx context.Context, product *entity.Product, entry *entity.StockMovement) entity.StockSignal {
	th := thresholdsFor(ctx, uc.thresholds, product)
	sig := domaininv.EvaluateSignal(product.ID, entry.NewStock, th, uc.clock.Now())
	seed, _ := domaininv.EvaluateStatus(entry.PreviousStock, th)

	previous, changed := uc.tracker.Observe(product.ID, entry.Sequence, seed, sig.Status)
	if !changed || uc.emitter == nil {
		return sig
	}
	event := entity.SignalEvent{
		ProductID:        product.ID,
		Status:           sig.Status,
		PreviousStatus:   previous,
		RequiredQuantity: sig.RequiredQuantity,
		CurrentQuantity:  sig.CurrentQuantity,
		TriggeredAt:      sig.EvaluatedAt,
	}
	if err := uc.emitter.Emit(context.WithoutCancel(ctx), event); err != nil {
		uc.log.Error().Err(err).Str("product_id", product.ID).Str("status", sig.Status).
			Msg("no se pudo emitir la señal de stock; se reintentará con el próximo movimiento")
		return sig
	}
	uc.tracker.Ack(product.ID, entry.Sequence, sig.Status)
	uc.metrics.SignalEmitted(sig.Status)
	uc.log.Info().Str("product_id", product.ID).Str("status", sig.Status).Str("previous_status", previous).
		Int64("required_quantity", sig.RequiredQuantity).Msg("cambio de señal de stock")
	return sig
}
