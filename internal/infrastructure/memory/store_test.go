package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

const testCategory = "cat-1"

func seedCategory(t *testing.T, s *memory.Store) {
	t.Helper()
	err := s.Categories().Create(context.Background(), &entity.Category{ID: testCategory, Name: "General"})
	if err != nil {
		require.ErrorIs(t, err, domain.ErrDuplicate)
	}
}

func seedProduct(t *testing.T, s *memory.Store, id string, stock int64) {
	t.Helper()
	seedCategory(t, s)
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: id, CategoryID: testCategory, SKU: "SKU-" + id, Name: "Producto " + id, StockQuantity: stock, Active: true, CreatedAt: t0, UpdatedAt: t0,
	}))
}

func entryFor(p *entity.Product, dir string, qty int64) *entity.StockMovement {
	pid := p.ID
	m := &entity.StockMovement{
		ID:            "mov-" + pid + "-" + time.Now().Format("150405.000000000"),
		ProductID:     &pid,
		Sequence:      p.LedgerSequence + 1,
		Type:          entity.MovementTypeAdjustment,
		Direction:     dir,
		Quantity:      qty,
		PreviousStock: p.StockQuantity,
		MovedAt:       t0,
	}
	m.NewStock = m.PreviousStock + m.Delta()
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRun_CommitAplicaEntradaYStock(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", 15)
	ctx := context.Background()

	err := s.Run(ctx, func(ctx context.Context, l repository.StockLedger) error {
		p, err := l.ReadCurrentQuantity(ctx, "p1")
		require.NoError(t, err)
		e := entryFor(p, entity.DirectionDecrease, 5)
		return l.AppendEntryAndUpdateQuantity(ctx, e, e.NewStock)
	})
	require.NoError(t, err)

	p, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, int64(10), p.StockQuantity)
	assert.Equal(t, int64(1), p.LedgerSequence)

	entries, _ := s.Movements().EntriesForProduct(ctx, "p1", repository.MovementFilter{})
	require.Len(t, entries, 1)
	assert.Equal(t, int64(15), entries[0].PreviousStock)
	assert.Equal(t, int64(10), entries[0].NewStock)
}

func TestRun_ErrorNoDejaEstadoParcial(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", 15)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(ctx context.Context, l repository.StockLedger) error {
		p, _ := l.ReadCurrentQuantity(ctx, "p1")
		e := entryFor(p, entity.DirectionIncrease, 5)
		require.NoError(t, l.AppendEntryAndUpdateQuantity(ctx, e, e.NewStock))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, int64(15), p.StockQuantity)
	entries, _ := s.Movements().EntriesForProduct(ctx, "p1", repository.MovementFilter{})
	assert.Empty(t, entries)
}

func TestRun_CancelacionAntesDelCommit(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", 15)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.Run(ctx, func(ctx context.Context, l repository.StockLedger) error {
		p, _ := l.ReadCurrentQuantity(ctx, "p1")
		e := entryFor(p, entity.DirectionIncrease, 5)
		require.NoError(t, l.AppendEntryAndUpdateQuantity(ctx, e, e.NewStock))
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	p, _ := s.Products().GetByID(context.Background(), "p1")
	assert.Equal(t, int64(15), p.StockQuantity)
}

func TestAppend_CompareAndSetRechazaLecturaObsoleta(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", 15)
	ctx := context.Background()

	err := s.Run(ctx, func(ctx context.Context, l repository.StockLedger) error {
		p, _ := l.ReadCurrentQuantity(ctx, "p1")
		stale := *p
		stale.StockQuantity = 14
		e := entryFor(&stale, entity.DirectionIncrease, 1)
		return l.AppendEntryAndUpdateQuantity(ctx, e, e.NewStock)
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestReadCurrentQuantity_ProductoInexistente(t *testing.T) {
	s := memory.NewStore()
	err := s.Run(context.Background(), func(ctx context.Context, l repository.StockLedger) error {
		_, err := l.ReadCurrentQuantity(ctx, "nope")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

// El bloqueo se mantiene hasta el fin de la transacción: una segunda tx sobre el mismo
// producto espera, una sobre otro producto no.
func TestRun_BloqueoPorProducto(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", 1)
	seedProduct(t, s, "p2", 1)
	ctx := context.Background()

	holding := make(chan struct{})
	releaseFirst := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Run(ctx, func(ctx context.Context, l repository.StockLedger) error {
			_, _ = l.ReadCurrentQuantity(ctx, "p1")
			close(holding)
			<-releaseFirst
			return nil
		})
	}()
	<-holding

	// Otro producto: no bloquea.
	err := s.Run(ctx, func(ctx context.Context, l repository.StockLedger) error {
		_, err := l.ReadCurrentQuantity(ctx, "p2")
		return err
	})
	require.NoError(t, err)

	// Mismo producto: espera hasta el timeout.
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err = s.Run(tctx, func(ctx context.Context, l repository.StockLedger) error {
		_, err := l.ReadCurrentQuantity(ctx, "p1")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(releaseFirst)
	wg.Wait()
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios
// ──────────────────────────────────────────────────────────────────────────────

func TestProductRepo_UpdateNoTocaStock(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", 7)
	ctx := context.Background()

	p, _ := s.Products().GetByID(ctx, "p1")
	p.Name = "Nuevo nombre"
	p.StockQuantity = 999
	require.NoError(t, s.Products().Update(ctx, p))

	got, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, "Nuevo nombre", got.Name)
	assert.Equal(t, int64(7), got.StockQuantity)
}

func TestProductRepo_SKUDuplicado(t *testing.T) {
	s := memory.NewStore()
	seedProduct(t, s, "p1", 0)
	err := s.Products().Create(context.Background(), &entity.Product{ID: "p2", CategoryID: testCategory, SKU: "SKU-p1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductRepo_CategoriaObligatoria(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedProduct(t, s, "p1", 3)

	var ve *domain.ValidationError
	err := s.Products().Create(ctx, &entity.Product{ID: "p2", SKU: "SKU-p2"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "category_id", ve.Field)

	err = s.Products().Create(ctx, &entity.Product{ID: "p3", CategoryID: "fantasma", SKU: "SKU-p3"})
	require.True(t, errors.As(err, &ve))

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	p.CategoryID = ""
	assert.ErrorIs(t, s.Products().Update(ctx, p), domain.ErrInvalidInput)

	got, _ := s.Products().GetByID(ctx, "p1")
	assert.Equal(t, testCategory, got.CategoryID)
	missing, _ := s.Products().GetByID(ctx, "p2")
	assert.Nil(t, missing)
}

func TestAuditLogRepo_DuplicadoYFiltros(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	repo := s.AuditLogs()
	e := &entity.AuditLogEntry{ID: "a1", TableName: "Product", RecordID: "p1", Severity: entity.SeverityWarning, Action: entity.AuditActionUpdate, CreatedAt: t0}
	require.NoError(t, repo.Create(ctx, e))
	assert.ErrorIs(t, repo.Create(ctx, e), domain.ErrDuplicate)
	require.NoError(t, repo.Create(ctx, &entity.AuditLogEntry{ID: "a2", TableName: "Product", RecordID: "p2", Severity: entity.SeverityInfo, Action: entity.AuditActionInsert, CreatedAt: t0.Add(time.Second)}))

	items, total, err := repo.List(ctx, repository.AuditLogFilter{Severity: entity.SeverityWarning}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "a1", items[0].ID)

	items, total, _ = repo.List(ctx, repository.AuditLogFilter{}, 1, 0)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "a2", items[0].ID, "más reciente primero")
}
