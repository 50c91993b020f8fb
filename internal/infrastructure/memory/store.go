// Package memory implementa el almacén del ledger en memoria, con la misma semántica
// transaccional que PostgreSQL: bloqueo por producto hasta el fin de la transacción y
// escrituras que se confirman juntas o no se confirman.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ appinv.TxRunner = (*Store)(nil)

// Store datos confirmados. Los productos de distinto ID nunca se bloquean entre sí.
type Store struct {
	mu         sync.RWMutex
	products   map[string]*entity.Product
	categories map[string]*entity.Category
	movements  map[string]*entity.StockMovement
	byProduct  map[string][]string // IDs de movimientos en orden de Sequence
	reversals  map[string]string   // movimiento original -> reversión
	audit      []*entity.AuditLogEntry
	auditIDs   map[string]struct{}

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		movements:  make(map[string]*entity.StockMovement),
		byProduct:  make(map[string][]string),
		reversals:  make(map[string]string),
		auditIDs:   make(map[string]struct{}),
		locks:      make(map[string]chan struct{}),
	}
}

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Categories repositorio de categorías.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }

// Movements lecturas del ledger fuera de transacción.
func (s *Store) Movements() *MovementReader { return &MovementReader{s: s} }

// AuditLogs repositorio de auditoría.
func (s *Store) AuditLogs() *AuditLogRepo { return &AuditLogRepo{s: s} }

// Analytics consultas agregadas sobre el ledger.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{s: s} }

// Run ejecuta fn con un ledger transaccional. Los bloqueos tomados se liberan al terminar.
// Si fn falla o ctx se cancela antes del commit no se aplica nada.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, ledger repository.StockLedger) error) error {
	tx := &txLedger{s: s, locked: make(map[string]struct{})}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return s.commit(tx.pending)
}

func (s *Store) commit(pending []pendingWrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validar todo antes de aplicar nada.
	stock := make(map[string][2]int64)
	for _, w := range pending {
		pid := w.entry.ProductIDValue()
		cur, ok := stock[pid]
		if !ok {
			p := s.products[pid]
			if p == nil {
				return domain.ErrProductNotFound
			}
			cur = [2]int64{p.StockQuantity, p.LedgerSequence}
		}
		if cur[0] != w.entry.PreviousStock || cur[1] != w.entry.Sequence-1 {
			return fmt.Errorf("commit %s: %w", pid, domain.ErrConcurrentModification)
		}
		stock[pid] = [2]int64{w.newQuantity, w.entry.Sequence}
	}

	for _, w := range pending {
		e := *w.entry
		pid := e.ProductIDValue()
		s.movements[e.ID] = &e
		s.byProduct[pid] = append(s.byProduct[pid], e.ID)
		if e.ReversalOf != nil {
			s.reversals[*e.ReversalOf] = e.ID
		}
		p := s.products[pid]
		p.StockQuantity = w.newQuantity
		p.LedgerSequence = e.Sequence
		p.UpdatedAt = e.MovedAt
	}
	return nil
}

func (s *Store) lockFor(productID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[productID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[productID] = ch
	}
	return ch
}

func (s *Store) entriesLocked(productID string) []*entity.StockMovement {
	ids := s.byProduct[productID]
	out := make([]*entity.StockMovement, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.movements[id])
	}
	return out
}

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func copyProduct(p *entity.Product) *entity.Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func filterEntries(entries []*entity.StockMovement, f repository.MovementFilter) []*entity.StockMovement {
	types := make(map[string]bool, len(f.Types))
	for _, t := range f.Types {
		types[t] = true
	}
	out := make([]*entity.StockMovement, 0, len(entries))
	for _, m := range entries {
		if len(types) > 0 && !types[m.Type] {
			continue
		}
		if f.From != nil && m.MovedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !m.MovedAt.Before(*f.To) {
			continue
		}
		if f.Reference != "" && m.Reference != f.Reference {
			continue
		}
		out = append(out, copyMovement(m))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Descending {
			return out[i].Sequence > out[j].Sequence
		}
		return out[i].Sequence < out[j].Sequence
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.StockMovement{}
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
