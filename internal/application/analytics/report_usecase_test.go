package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

type fakePDF struct{ got analytics.KardexData }

func (f *fakePDF) GenerateKardexPDF(_ context.Context, d analytics.KardexData) ([]byte, error) {
	f.got = d
	return []byte("%PDF-1.4"), nil
}

type fixture struct {
	clk    *clock.Manual
	store  *memory.Store
	engine *appinv.RegisterMovementUseCase
	report *analytics.ReportUseCase
	pdf    *fakePDF
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewManual(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), time.Minute)
	log := zerolog.Nop()
	signals := appinv.NewSignalUseCase(store.Products(), appinv.NewConfigThresholds(10, 20, nil, log), nil, clk, log, nil)
	engine := appinv.NewRegisterMovementUseCase(store, store.Movements(), signals, nil, clk, log, appinv.EngineConfig{})
	pdf := &fakePDF{}
	report := analytics.NewReportUseCase(store.Analytics(), store.Products(), store.Movements(), signals, pdf, clk)

	ctx := context.Background()
	require.NoError(t, store.Categories().Create(ctx, &entity.Category{ID: "c1", Name: "Abarrotes"}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", CategoryID: "c1", SKU: "ARROZ", Name: "Arroz", StockQuantity: 5, Active: true}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p2", CategoryID: "c1", SKU: "SAL", Name: "Sal", StockQuantity: 100, Active: true}))
	price := decimal.RequireFromString("2.50")
	for _, mv := range []appinv.MovementInput{
		{ProductID: "p1", Type: entity.MovementTypeIn, Quantity: 20, UnitPrice: &price},
		{ProductID: "p1", Type: entity.MovementTypeOut, Quantity: 8, UnitPrice: &price},
		{ProductID: "p2", Type: entity.MovementTypeOut, Quantity: 1},
	} {
		_, err := engine.ApplyMovement(ctx, mv)
		require.NoError(t, err)
	}
	return &fixture{clk: clk, store: store, engine: engine, report: report, pdf: pdf}
}

func TestMovementSummary_SumaEntradasYSalidas(t *testing.T) {
	f := newFixture(t)
	res, err := f.report.MovementSummary(context.Background(), "", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, int64(20), res.TotalIn)
	assert.Equal(t, int64(9), res.TotalOut)
	assert.Equal(t, int64(11), res.NetChange)
	assert.Equal(t, "50.00", res.ValueIn.StringFixed(2))
	assert.Equal(t, "20.00", res.ValueOut.StringFixed(2))
	assert.Len(t, res.Lines, 2)
	assert.Equal(t, 1, res.ReorderAlerts, "p1 queda en 17, bajo el punto de reorden")
}

func TestMovementSummary_PorProductoYRangoVacio(t *testing.T) {
	f := newFixture(t)
	res, err := f.report.MovementSummary(context.Background(), "p2", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TotalOut)
	assert.Zero(t, res.TotalIn)

	res, err = f.report.MovementSummary(context.Background(), "", "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Empty(t, res.Lines)

	_, err = f.report.MovementSummary(context.Background(), "", "2026-03-31", "2026-03-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRunningTotals(t *testing.T) {
	f := newFixture(t)
	res, err := f.report.RunningTotals(context.Background(), "p1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.OpeningStock)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(25), res.Items[0].Balance)
	assert.Equal(t, int64(17), res.Items[1].Balance)
	assert.Equal(t, int64(8), res.Items[1].TotalOut)
}

// Un rango sin movimientos abre con el saldo histórico de esa fecha, no con el stock actual.
func TestRunningTotals_RangoSinMovimientosUsaSaldoHistorico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clk.Set(time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC))
	_, err := f.engine.ApplyMovement(ctx, appinv.MovementInput{ProductID: "p1", Type: entity.MovementTypeOut, Quantity: 2})
	require.NoError(t, err)

	// Entre el 10 (saldo 17) y el 20 (17 → 15).
	res, err := f.report.RunningTotals(ctx, "p1", "2026-03-12", "2026-03-15")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, int64(17), res.OpeningStock)

	// Antes del primer movimiento: el previo de la entrada de 20 unidades.
	res, err = f.report.RunningTotals(ctx, "p1", "2026-03-01", "2026-03-05")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, int64(5), res.OpeningStock)

	// Después del último: el saldo actual.
	res, err = f.report.RunningTotals(ctx, "p1", "2026-03-21", "")
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.OpeningStock)
}

func TestKardexPDF(t *testing.T) {
	f := newFixture(t)
	b, name, err := f.report.KardexPDF(context.Background(), "p1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "kardex-ARROZ.pdf", name)
	assert.Equal(t, "%PDF-1.4", string(b))
	assert.Len(t, f.pdf.got.Rows, 2)

	_, _, err = f.report.KardexPDF(context.Background(), "ghost", "", "")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
