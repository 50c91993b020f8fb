package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockLedger = (*txLedger)(nil)

type pendingWrite struct {
	entry       *entity.StockMovement
	newQuantity int64
}

// txLedger vista transaccional: lecturas confirmadas más las escrituras pendientes de esta tx.
type txLedger struct {
	s       *Store
	locked  map[string]struct{}
	pending []pendingWrite
}

func (t *txLedger) release() {
	for id := range t.locked {
		<-t.s.lockFor(id)
	}
	t.locked = nil
}

func (t *txLedger) lock(ctx context.Context, productID string) error {
	if _, ok := t.locked[productID]; ok {
		return nil
	}
	select {
	case t.s.lockFor(productID) <- struct{}{}:
		t.locked[productID] = struct{}{}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lock product %s: %w", productID, ctx.Err())
	}
}

// ReadCurrentQuantity bloquea el producto hasta el fin de la transacción y lo devuelve
// con las escrituras pendientes de esta misma tx aplicadas.
func (t *txLedger) ReadCurrentQuantity(ctx context.Context, productID string) (*entity.Product, error) {
	if err := t.lock(ctx, productID); err != nil {
		return nil, err
	}
	t.s.mu.RLock()
	p := copyProduct(t.s.products[productID])
	t.s.mu.RUnlock()
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	for _, w := range t.pending {
		if w.entry.ProductIDValue() == productID {
			p.StockQuantity = w.newQuantity
			p.LedgerSequence = w.entry.Sequence
			p.UpdatedAt = w.entry.MovedAt
		}
	}
	return p, nil
}

// AppendEntryAndUpdateQuantity encola la escritura; se aplica en el commit.
func (t *txLedger) AppendEntryAndUpdateQuantity(ctx context.Context, entry *entity.StockMovement, newQuantity int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pid := entry.ProductIDValue()
	if _, ok := t.locked[pid]; !ok {
		return errors.New("append entry: el producto no fue leído en esta transacción")
	}
	if entry.Quantity <= 0 || newQuantity < 0 || entry.NewStock != newQuantity ||
		!entry.Balanced() {
		return fmt.Errorf("append entry: %w", domain.ErrInvalidInput)
	}
	current, err := t.ReadCurrentQuantity(ctx, pid)
	if err != nil {
		return err
	}
	if current.StockQuantity != entry.PreviousStock || current.LedgerSequence != entry.Sequence-1 {
		return fmt.Errorf("append entry: %w", domain.ErrConcurrentModification)
	}
	if entry.ReversalOf != nil {
		if r, _ := t.FindReversal(ctx, *entry.ReversalOf); r != nil {
			return domain.ErrAlreadyReversed
		}
	}
	t.s.mu.RLock()
	_, dup := t.s.movements[entry.ID]
	t.s.mu.RUnlock()
	if dup {
		return fmt.Errorf("append entry %s: %w", entry.ID, domain.ErrDuplicate)
	}
	t.pending = append(t.pending, pendingWrite{entry: copyMovement(entry), newQuantity: newQuantity})
	return nil
}

func (t *txLedger) EntriesForProduct(ctx context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	t.s.mu.RLock()
	entries := t.s.entriesLocked(productID)
	t.s.mu.RUnlock()
	for _, w := range t.pending {
		if w.entry.ProductIDValue() == productID {
			entries = append(entries, w.entry)
		}
	}
	return filterEntries(entries, f), nil
}

func (t *txLedger) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	for _, w := range t.pending {
		if w.entry.ID == id {
			return copyMovement(w.entry), nil
		}
	}
	return t.s.Movements().GetMovement(ctx, id)
}

func (t *txLedger) FindReversal(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	for _, w := range t.pending {
		if w.entry.ReversalOf != nil && *w.entry.ReversalOf == movementID {
			return copyMovement(w.entry), nil
		}
	}
	return t.s.Movements().FindReversal(ctx, movementID)
}
