package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

const testCategory = "cat-abarrotes"

func newProductUseCase(t *testing.T) (*usecase.ProductUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Second)
	rec := audit.NewRecorder(store.AuditLogs(), clk, zerolog.Nop(), audit.Config{})
	require.NoError(t, store.Categories().Create(context.Background(), &entity.Category{ID: testCategory, Name: "Abarrotes"}))
	return usecase.NewProductUseCase(store.Products(), store.Categories(), rec, clk), store
}

func TestProductUseCase_CreateAuditaInsert(t *testing.T) {
	uc, store := newProductUseCase(t)
	ctx := context.Background()

	p, err := uc.Create(ctx, "u1", dto.CreateProductRequest{SKU: " ARZ-1 ", Name: "Arroz", CategoryID: testCategory, UnitPrice: decimal.RequireFromString("3.20"), InitialStock: 12})
	require.NoError(t, err)
	assert.Equal(t, "ARZ-1", p.SKU)
	assert.Equal(t, int64(12), p.StockQuantity)
	assert.Equal(t, int64(0), p.LedgerSequence)
	assert.True(t, p.Active)

	logs, _, err := store.AuditLogs().List(ctx, repository.AuditLogFilter{RecordID: p.ID}, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.AuditActionInsert, logs[0].Action)
	assert.Nil(t, logs[0].OldValues)
	assert.Contains(t, string(logs[0].NewValues), `"sku":"ARZ-1"`)

	_, err = uc.Create(ctx, "u1", dto.CreateProductRequest{SKU: "ARZ-1", Name: "Otro", CategoryID: testCategory})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUseCase_CreateValida(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()
	neg := int64(-1)

	cases := []dto.CreateProductRequest{
		{SKU: "", Name: "x", CategoryID: testCategory},
		{SKU: "A", Name: "", CategoryID: testCategory},
		{SKU: "A", Name: "x", CategoryID: testCategory, UnitPrice: decimal.NewFromInt(-1)},
		{SKU: "A", Name: "x", CategoryID: testCategory, InitialStock: -3},
		{SKU: "A", Name: "x", CategoryID: testCategory, ReorderPoint: &neg},
		{SKU: "A", Name: "x", CategoryID: "no-existe"},
		{SKU: "A", Name: "x"},
		{SKU: "A", Name: "x", CategoryID: "   "},
	}
	for _, c := range cases {
		_, err := uc.Create(ctx, "", c)
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve), "%+v", c)
	}
}

func TestProductUseCase_UpdateNoModificaStock(t *testing.T) {
	uc, store := newProductUseCase(t)
	ctx := context.Background()
	p, err := uc.Create(ctx, "u1", dto.CreateProductRequest{SKU: "SAL", Name: "Sal", CategoryID: testCategory, InitialStock: 4})
	require.NoError(t, err)

	name := "Sal marina"
	rp := int64(30)
	got, err := uc.Update(ctx, "u2", p.ID, dto.UpdateProductRequest{Name: &name, ReorderPoint: &rp})
	require.NoError(t, err)
	assert.Equal(t, "Sal marina", got.Name)
	assert.Equal(t, int64(4), got.StockQuantity)
	require.NotNil(t, got.ReorderPoint)
	assert.Equal(t, int64(30), *got.ReorderPoint)

	logs, _, _ := store.AuditLogs().List(ctx, repository.AuditLogFilter{RecordID: p.ID, Action: entity.AuditActionUpdate}, 10, 0)
	require.Len(t, logs, 1)
	assert.Contains(t, string(logs[0].OldValues), `"name":"Sal"`)
	assert.Contains(t, string(logs[0].NewValues), `"name":"Sal marina"`)

	_, err = uc.Update(ctx, "u2", "ghost", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestProductUseCase_List(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()
	for _, sku := range []string{"B", "A", "C"} {
		_, err := uc.Create(ctx, "", dto.CreateProductRequest{SKU: sku, Name: "prod " + sku, CategoryID: testCategory})
		require.NoError(t, err)
	}
	res, err := uc.List(ctx, dto.ProductListRequest{PageRequest: dto.PageRequest{Limit: 2}})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "A", res.Items[0].SKU)
}

// ─────────────────────────────────────────────────────────────────────────────
// Categoría obligatoria
// ─────────────────────────────────────────────────────────────────────────────

func TestProductUseCase_CategoriaObligatoria(t *testing.T) {
	uc, store := newProductUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", dto.CreateProductRequest{SKU: "SIN-CAT", Name: "Sin categoría"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "category_id", ve.Field)
	got, _ := store.Products().GetBySKU(ctx, "SIN-CAT")
	assert.Nil(t, got)

	p, err := uc.Create(ctx, "u1", dto.CreateProductRequest{SKU: "CON-CAT", Name: "Con categoría", CategoryID: testCategory})
	require.NoError(t, err)

	empty := ""
	_, err = uc.Update(ctx, "u1", p.ID, dto.UpdateProductRequest{CategoryID: &empty})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "category_id", ve.Field)

	stored, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, testCategory, stored.CategoryID)
}
