package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

// EngineConfig parámetros del motor de movimientos.
type EngineConfig struct {
	MaxAttempts  int           // intentos ante modificación concurrente; 0 = 3
	BaseBackoff  time.Duration // espera antes del segundo intento, se duplica en cada uno; 0 = 10ms
	StoreTimeout time.Duration // límite por intento; 0 = 5s
	Metrics      Metrics
}

// MovementInput entrada de ApplyMovement.
type MovementInput struct {
	ProductID string
	Type      string
	Direction string // obligatorio en adjustment; opcional en transfer
	Quantity  int64
	UnitPrice *decimal.Decimal
	Reference string
	Notes     string
	UserID    string
}

// RegisterMovementUseCase es la única vía para cambiar Product.StockQuantity.
// Cada cambio queda respaldado por exactamente una entrada del ledger escrita en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner  TxRunner
	movements repository.StockMovementReader
	signals   *SignalUseCase
	audit     AuditSink
	clock     clock.Clock
	log       zerolog.Logger
	metrics   Metrics
	cfg       EngineConfig
}

// NewRegisterMovementUseCase construye el caso de uso. auditSink puede ser nil.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	movements repository.StockMovementReader,
	signals *SignalUseCase,
	auditSink AuditSink,
	clk clock.Clock,
	log zerolog.Logger,
	cfg EngineConfig,
) *RegisterMovementUseCase {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 10 * time.Millisecond
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	m := cfg.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	if auditSink == nil {
		auditSink = nopAudit{}
	}
	return &RegisterMovementUseCase{
		txRunner:  txRunner,
		movements: movements,
		signals:   signals,
		audit:     auditSink,
		clock:     clk,
		log:       log.With().Str("component", "inventory").Logger(),
		metrics:   m,
		cfg:       cfg,
	}
}

// plannedMovement movimiento ya validado, listo para aplicarse dentro de la transacción.
// guard, si existe, corre bajo el bloqueo del producto antes de calcular el nuevo stock.
type plannedMovement struct {
	productID  string
	typ        string
	direction  string
	quantity   int64
	unitPrice  *decimal.Decimal
	reference  string
	notes      string
	userID     string
	reversalOf *string
	guard      func(ctx context.Context, ledger repository.StockLedger) error
}

// ApplyMovement valida y aplica un movimiento: bloquea el producto, calcula el nuevo stock,
// escribe la entrada del ledger y el stock en la misma transacción. Tras el commit evalúa la
// señal del producto y audita el cambio.
func (uc *RegisterMovementUseCase) ApplyMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	direction, err := ValidateMovement(in)
	if err != nil {
		uc.reject(ctx, in.ProductID, in.UserID, attemptedFrom(in, direction), err)
		return nil, err
	}
	plan := plannedMovement{
		productID: in.ProductID,
		typ:       in.Type,
		direction: direction,
		quantity:  in.Quantity,
		unitPrice: in.UnitPrice,
		reference: in.Reference,
		notes:     in.Notes,
		userID:    in.UserID,
	}
	return uc.execute(ctx, plan)
}

func (uc *RegisterMovementUseCase) execute(ctx context.Context, plan plannedMovement) (*entity.StockMovement, error) {
	start := time.Now()
	entry, before, err := uc.applyWithRetry(ctx, plan)
	if err != nil {
		uc.reject(ctx, plan.productID, plan.userID, attemptedFromPlan(plan), err)
		return nil, err
	}
	uc.afterCommit(ctx, plan, before, entry)
	uc.metrics.MovementApplied(entry.Type, time.Since(start))
	return entry, nil
}

func (uc *RegisterMovementUseCase) applyWithRetry(ctx context.Context, plan plannedMovement) (*entity.StockMovement, *entity.Product, error) {
	var lastErr error
	for attempt := 1; attempt <= uc.cfg.MaxAttempts; attempt++ {
		entry, before, err := uc.attempt(ctx, plan)
		if err == nil {
			return entry, before, nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) {
			return nil, nil, classifyStoreError("apply movement", err)
		}
		lastErr = err
		if attempt == uc.cfg.MaxAttempts {
			break
		}
		uc.metrics.ConcurrencyRetry()
		wait := uc.cfg.BaseBackoff << (attempt - 1)
		uc.log.Debug().Str("product_id", plan.productID).Int("attempt", attempt).Dur("backoff", wait).Msg("modificación concurrente; reintentando")
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, &domain.PersistenceError{Op: "apply movement", Err: ctx.Err()}
		}
	}
	return nil, nil, fmt.Errorf("%d intentos agotados: %w", uc.cfg.MaxAttempts, lastErr)
}

// attempt ejecuta un ciclo leer-calcular-escribir dentro de una transacción.
func (uc *RegisterMovementUseCase) attempt(ctx context.Context, plan plannedMovement) (*entity.StockMovement, *entity.Product, error) {
	actx, cancel := context.WithTimeout(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	var entry *entity.StockMovement
	var before *entity.Product
	err := uc.txRunner.Run(actx, func(ctx context.Context, ledger repository.StockLedger) error {
		product, err := ledger.ReadCurrentQuantity(ctx, plan.productID)
		if err != nil {
			return err
		}
		if plan.guard != nil {
			if err := plan.guard(ctx, ledger); err != nil {
				return err
			}
		}
		newStock, err := domaininv.NextStock(product.StockQuantity, plan.direction, plan.quantity)
		if errors.Is(err, domain.ErrInsufficientStock) {
			return &domain.InsufficientStockError{
				ProductID: product.ID,
				Available: product.StockQuantity,
				Requested: plan.quantity,
			}
		}
		if err != nil {
			return err
		}
		productID := product.ID
		e := &entity.StockMovement{
			ID:            uuid.New().String(),
			ProductID:     &productID,
			Sequence:      product.LedgerSequence + 1,
			Type:          plan.typ,
			Direction:     plan.direction,
			Quantity:      plan.quantity,
			PreviousStock: product.StockQuantity,
			NewStock:      newStock,
			Reference:     plan.reference,
			Notes:         plan.notes,
			ReversalOf:    plan.reversalOf,
			MovedAt:       uc.clock.Now(),
		}
		if plan.unitPrice != nil {
			price := *plan.unitPrice
			total := domaininv.MovementTotal(price, plan.quantity)
			e.UnitPrice = &price
			e.TotalPrice = &total
		}
		if plan.userID != "" {
			uid := plan.userID
			e.UserID = &uid
		}
		if err := ledger.AppendEntryAndUpdateQuantity(ctx, e, newStock); err != nil {
			return err
		}
		snapshot := *product
		before = &snapshot
		entry = e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, before, nil
}

// afterCommit corre solo con la transacción confirmada. Ningún fallo aquí revierte el movimiento.
func (uc *RegisterMovementUseCase) afterCommit(ctx context.Context, plan plannedMovement, before *entity.Product, entry *entity.StockMovement) {
	after := *before
	after.StockQuantity = entry.NewStock
	after.LedgerSequence = entry.Sequence
	after.UpdatedAt = entry.MovedAt

	status := ""
	if uc.signals != nil {
		sig := uc.signals.ObserveMovement(ctx, &after, entry)
		status = sig.Status
	}

	details := fmt.Sprintf("movimiento %s (%s) de %d unidades: %d a %d", entry.Type, entry.Direction, entry.Quantity, entry.PreviousStock, entry.NewStock)
	if entry.ReversalOf != nil {
		details = fmt.Sprintf("reversión de %s: %s", *entry.ReversalOf, details)
	}
	uc.audit.Record(ctx, audit.Entry{
		TableName: "Product",
		RecordID:  after.ID,
		Action:    entity.AuditActionUpdate,
		Severity:  entity.SeverityInfo,
		Details:   details,
		OldValues: audit.StockSnapshot{StockQuantity: before.StockQuantity, LedgerSequence: before.LedgerSequence},
		NewValues: audit.StockSnapshot{StockQuantity: after.StockQuantity, LedgerSequence: after.LedgerSequence},
		UserID:    plan.userID,
	})

	uc.log.Info().
		Str("product_id", after.ID).
		Str("movement_id", entry.ID).
		Str("type", entry.Type).
		Int64("quantity", entry.Quantity).
		Int64("previous_stock", entry.PreviousStock).
		Int64("new_stock", entry.NewStock).
		Int64("sequence", entry.Sequence).
		Str("signal", status).
		Msg("movimiento aplicado")
}

// attemptedMovement snapshot del intento rechazado que queda en la auditoría.
type attemptedMovement struct {
	Type       string  `json:"type"`
	Direction  string  `json:"direction,omitempty"`
	Quantity   int64   `json:"quantity"`
	Reference  string  `json:"reference,omitempty"`
	ReversalOf *string `json:"reversal_of,omitempty"`
	Outcome    string  `json:"outcome"`
}

func attemptedFrom(in MovementInput, direction string) attemptedMovement {
	if direction == "" {
		direction = in.Direction
	}
	return attemptedMovement{Type: in.Type, Direction: direction, Quantity: in.Quantity, Reference: in.Reference}
}

func attemptedFromPlan(p plannedMovement) attemptedMovement {
	return attemptedMovement{Type: p.typ, Direction: p.direction, Quantity: p.quantity, Reference: p.reference, ReversalOf: p.reversalOf}
}

// reject audita y registra un intento fallido con la severidad que corresponde a su causa.
func (uc *RegisterMovementUseCase) reject(ctx context.Context, productID, userID string, attempted attemptedMovement, err error) {
	reason := ErrorReason(err)
	attempted.Outcome = reason
	severity := entity.SeverityError
	switch reason {
	case ReasonValidation:
		severity = entity.SeverityInfo
	case ReasonInsufficientStock, ReasonNotFound, ReasonAlreadyReversed:
		severity = entity.SeverityWarning
	}

	var old any
	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		old = map[string]int64{"stock_quantity": ise.Available}
	}
	uc.audit.Record(ctx, audit.Entry{
		TableName: "Product",
		RecordID:  productID,
		Action:    entity.AuditActionUpdate,
		Severity:  severity,
		Details:   "movimiento rechazado: " + err.Error(),
		OldValues: old,
		NewValues: attempted,
		UserID:    userID,
	})
	uc.metrics.MovementRejected(reason)

	ev := uc.log.Warn()
	if severity == entity.SeverityError {
		ev = uc.log.Error()
	}
	ev.Err(err).Str("product_id", productID).Str("reason", reason).Msg("movimiento rechazado")
}

// classifyStoreError deja pasar los errores de negocio y envuelve el resto como PersistenceError.
func classifyStoreError(op string, err error) error {
	var ve *domain.ValidationError
	var ise *domain.InsufficientStockError
	var pe *domain.PersistenceError
	switch {
	case errors.As(err, &ve), errors.As(err, &ise), errors.As(err, &pe),
		errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
