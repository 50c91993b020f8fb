package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.CategoryRepository  = (*CategoryRepo)(nil)
	_ repository.StockMovementReader = (*MovementReader)(nil)
	_ repository.AuditLogRepository  = (*AuditLogRepo)(nil)
	_ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

// Create persiste un producto; ErrDuplicate si el ID o el SKU ya existen.
// La categoría es obligatoria y debe existir.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkCategoryLocked(p.CategoryID); err != nil {
		return err
	}
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = copyProduct(p)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyProduct(r.s.products[id]), nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return copyProduct(p), nil
		}
	}
	return nil, nil
}

// Update modifica los campos que no son stock.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur := r.s.products[p.ID]
	if cur == nil {
		return domain.ErrProductNotFound
	}
	if err := r.s.checkCategoryLocked(p.CategoryID); err != nil {
		return err
	}
	for _, other := range r.s.products {
		if other.ID != p.ID && other.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	next := copyProduct(p)
	next.StockQuantity = cur.StockQuantity
	next.LedgerSequence = cur.LedgerSequence
	next.CreatedAt = cur.CreatedAt
	r.s.products[p.ID] = next
	return nil
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	out := make([]*entity.Product, 0, len(r.s.products))
	search := strings.ToLower(f.Search)
	for _, p := range r.s.products {
		if f.ActiveOnly && !p.Active {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.SKU), search) && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, copyProduct(p))
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return page(out, limit, offset), nil
}

// checkCategoryLocked replica la FK NOT NULL de products.category_id.
func (s *Store) checkCategoryLocked(id string) error {
	if id == "" {
		return &domain.ValidationError{Field: "category_id", Reason: "es obligatorio"}
	}
	if _, ok := s.categories[id]; !ok {
		return &domain.ValidationError{Field: "category_id", Reason: "la categoría no existe"}
	}
	return nil
}

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c := r.s.categories[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// MovementReader lecturas confirmadas del ledger.
type MovementReader struct{ s *Store }

func (r *MovementReader) EntriesForProduct(_ context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return filterEntries(r.s.entriesLocked(productID), f), nil
}

func (r *MovementReader) GetMovement(_ context.Context, id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return copyMovement(r.s.movements[id]), nil
}

func (r *MovementReader) FindReversal(_ context.Context, movementID string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.reversals[movementID]
	if !ok {
		return nil, nil
	}
	return copyMovement(r.s.movements[id]), nil
}

// AuditLogRepo trail de auditoría en memoria.
type AuditLogRepo struct{ s *Store }

func (r *AuditLogRepo) Create(_ context.Context, e *entity.AuditLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.auditIDs[e.ID]; ok {
		return fmt.Errorf("audit log %s: %w", e.ID, domain.ErrDuplicate)
	}
	cp := *e
	r.s.audit = append(r.s.audit, &cp)
	r.s.auditIDs[e.ID] = struct{}{}
	return nil
}

// List devuelve las entradas más recientes primero y el total que cumple el filtro.
func (r *AuditLogRepo) List(_ context.Context, f repository.AuditLogFilter, limit, offset int) ([]*entity.AuditLogEntry, int, error) {
	r.s.mu.RLock()
	out := make([]*entity.AuditLogEntry, 0)
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		e := r.s.audit[i]
		if !auditMatches(e, f) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), len(out), nil
}

func auditMatches(e *entity.AuditLogEntry, f repository.AuditLogFilter) bool {
	switch {
	case f.TableName != "" && e.TableName != f.TableName,
		f.RecordID != "" && e.RecordID != f.RecordID,
		f.Severity != "" && e.Severity != f.Severity,
		f.Action != "" && e.Action != f.Action,
		f.UserID != "" && (e.UserID == nil || *e.UserID != f.UserID),
		f.From != nil && e.CreatedAt.Before(*f.From),
		f.To != nil && !e.CreatedAt.Before(*f.To):
		return false
	}
	return true
}

// AnalyticsRepo agregados calculados solo a partir del ledger.
type AnalyticsRepo struct{ s *Store }

func (r *AnalyticsRepo) SumByType(_ context.Context, productID string, from, to time.Time) ([]repository.MovementSummaryRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type key struct{ typ, dir string }
	acc := make(map[key]*repository.MovementSummaryRow)
	for _, m := range r.s.movements {
		if productID != "" && m.ProductIDValue() != productID {
			continue
		}
		if m.MovedAt.Before(from) || !m.MovedAt.Before(to) {
			continue
		}
		k := key{m.Type, m.Direction}
		row, ok := acc[k]
		if !ok {
			row = &repository.MovementSummaryRow{Type: m.Type, Direction: m.Direction, TotalValue: decimal.Zero}
			acc[k] = row
		}
		row.Movements++
		row.Quantity += m.Quantity
		if m.TotalPrice != nil {
			row.TotalValue = row.TotalValue.Add(*m.TotalPrice)
		}
	}
	out := make([]repository.MovementSummaryRow, 0, len(acc))
	for _, row := range acc {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Direction < out[j].Direction
	})
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
