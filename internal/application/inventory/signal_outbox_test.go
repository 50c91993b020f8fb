package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// switchableEmitter canal de notificación que se puede "apagar". Con gate no nil
// cada entrega espera a que se cierre.
type switchableEmitter struct {
	mu     sync.Mutex
	down   bool
	calls  int
	gate   chan struct{}
	events []entity.SignalEvent
}

func (e *switchableEmitter) Emit(ctx context.Context, ev entity.SignalEvent) error {
	if e.gate != nil {
		select {
		case <-e.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.down {
		return errors.New("webhook 503")
	}
	e.events = append(e.events, ev)
	return nil
}

func (e *switchableEmitter) setDown(v bool) {
	e.mu.Lock()
	e.down = v
	e.mu.Unlock()
}

func (e *switchableEmitter) Events() []entity.SignalEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]entity.SignalEvent(nil), e.events...)
}

func signalEvent(productID, status string) entity.SignalEvent {
	return entity.SignalEvent{ProductID: productID, Status: status, TriggeredAt: start}
}

// newSignalEngine motor sobre store con emitter como canal de señales.
func newSignalEngine(store *memory.Store, emitter appinv.SignalEmitter) *appinv.RegisterMovementUseCase {
	clk := clock.NewManual(start, time.Millisecond)
	log := zerolog.Nop()
	signals := appinv.NewSignalUseCase(store.Products(), appinv.NewConfigThresholds(10, 20, store.Categories(), log), emitter, clk, log, nil)
	recorder := audit.NewRecorder(store.AuditLogs(), clk, log, audit.Config{})
	return appinv.NewRegisterMovementUseCase(store, store.Movements(), signals, recorder, clk, log, appinv.EngineConfig{})
}

func seedStock(t *testing.T, store *memory.Store, id string, stock int64) {
	t.Helper()
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: id, CategoryID: testCategory, SKU: "SKU-" + id, Name: "Producto " + id, StockQuantity: stock, Active: true,
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cola de señales
// ──────────────────────────────────────────────────────────────────────────────

func TestSignalOutbox_FlushRetieneHastaQueElCanalVuelve(t *testing.T) {
	inner := &switchableEmitter{down: true}
	o := appinv.NewSignalOutbox(inner, zerolog.Nop(), appinv.OutboxConfig{})
	ctx := context.Background()

	require.NoError(t, o.Emit(ctx, signalEvent("p1", entity.SignalStatusLow)))
	require.NoError(t, o.Emit(ctx, signalEvent("p2", entity.SignalStatusCritical)))
	assert.Equal(t, 2, o.Pending())

	require.Error(t, o.Flush(ctx))
	assert.Equal(t, 2, o.Pending())
	assert.Equal(t, 1, inner.calls, "se detiene en el primer fallo")

	inner.setDown(false)
	require.NoError(t, o.Flush(ctx))
	assert.Zero(t, o.Pending())

	got := inner.Events()
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ProductID)
	assert.Equal(t, "p2", got[1].ProductID)
}

func TestSignalOutbox_ColaLlena(t *testing.T) {
	o := appinv.NewSignalOutbox(&switchableEmitter{down: true}, zerolog.Nop(), appinv.OutboxConfig{MaxPending: 1})
	ctx := context.Background()

	require.NoError(t, o.Emit(ctx, signalEvent("p1", entity.SignalStatusLow)))
	assert.ErrorIs(t, o.Emit(ctx, signalEvent("p2", entity.SignalStatusLow)), appinv.ErrOutboxFull)
	assert.Equal(t, 1, o.Pending())
}

func TestSignalOutbox_StopVaciaLaCola(t *testing.T) {
	inner := &switchableEmitter{down: true}
	o := appinv.NewSignalOutbox(inner, zerolog.Nop(), appinv.OutboxConfig{RetryInterval: time.Hour})
	require.NoError(t, o.Start())
	require.NoError(t, o.Emit(context.Background(), signalEvent("p1", entity.SignalStatusLow)))

	inner.setDown(false)
	require.NoError(t, o.Stop(context.Background()))
	assert.Zero(t, o.Pending())
	assert.Len(t, inner.Events(), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flancos con el canal caído
// ──────────────────────────────────────────────────────────────────────────────

// Sin cola: el cambio ok→low cuya emisión falló se vuelve a emitir con el siguiente movimiento.
func TestSignals_FlancoNoSePierdeSiElEmisorFalla(t *testing.T) {
	store := newStore(t)
	seedStock(t, store, "p1", 50)
	em := &switchableEmitter{down: true}
	engine := newSignalEngine(store, em)
	ctx := context.Background()

	_, err := engine.ApplyMovement(ctx, out("p1", 45)) // 50 → 5: ok → low
	require.NoError(t, err)
	assert.Empty(t, em.Events())

	em.setDown(false)
	_, err = engine.ApplyMovement(ctx, out("p1", 1)) // 5 → 4: sigue low
	require.NoError(t, err)

	events := em.Events()
	require.Len(t, events, 1)
	assert.Equal(t, entity.SignalStatusLow, events[0].Status)
	assert.Equal(t, entity.SignalStatusOK, events[0].PreviousStatus)
	assert.Equal(t, int64(4), events[0].CurrentQuantity)

	// Ya entregado: otro movimiento dentro de low no vuelve a notificar.
	_, err = engine.ApplyMovement(ctx, out("p1", 1))
	require.NoError(t, err)
	assert.Len(t, em.Events(), 1)
}

// Con cola: el reintento en segundo plano entrega el cambio sin esperar otro movimiento.
func TestSignals_ColaEntregaCuandoElCanalSeRecupera(t *testing.T) {
	store := newStore(t)
	seedStock(t, store, "p1", 50)
	em := &switchableEmitter{down: true}
	outbox := appinv.NewSignalOutbox(em, zerolog.Nop(), appinv.OutboxConfig{RetryInterval: time.Second})
	require.NoError(t, outbox.Start())
	t.Cleanup(func() { _ = outbox.Stop(context.Background()) })
	engine := newSignalEngine(store, outbox)
	ctx := context.Background()

	_, err := engine.ApplyMovement(ctx, out("p1", 45))
	require.NoError(t, err)
	assert.Equal(t, 1, outbox.Pending())

	em.setDown(false)
	_, err = engine.ApplyMovement(ctx, out("p1", 1))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(em.Events()) == 1 }, 5*time.Second, 20*time.Millisecond)
	events := em.Events()
	assert.Equal(t, entity.SignalStatusLow, events[0].Status)
	assert.Equal(t, entity.SignalStatusOK, events[0].PreviousStatus)
	assert.Zero(t, outbox.Pending())
}

// Un canal lento no retrasa la confirmación del movimiento.
func TestSignals_CanalLentoNoBloqueaElMovimiento(t *testing.T) {
	store := newStore(t)
	seedStock(t, store, "p1", 50)
	em := &switchableEmitter{gate: make(chan struct{})}
	outbox := appinv.NewSignalOutbox(em, zerolog.Nop(), appinv.OutboxConfig{RetryInterval: time.Hour})
	require.NoError(t, outbox.Start())
	engine := newSignalEngine(store, outbox)

	applied := make(chan error, 1)
	go func() {
		_, err := engine.ApplyMovement(context.Background(), out("p1", 45))
		applied <- err
	}()
	select {
	case err := <-applied:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("el movimiento esperó la entrega de la señal")
	}

	close(em.gate)
	require.NoError(t, outbox.Stop(context.Background()))
	assert.Len(t, em.Events(), 1)
}
