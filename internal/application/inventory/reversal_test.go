package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestReverseMovement_CompensaSinEditarElLedger(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "p1", 5)
	ctx := context.Background()

	original, err := h.engine.ApplyMovement(ctx, in("p1", 10))
	require.NoError(t, err)

	rev, err := h.engine.ReverseMovement(ctx, original.ID, "u2", "recepción duplicada")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeOut, rev.Type)
	assert.Equal(t, entity.DirectionDecrease, rev.Direction)
	assert.Equal(t, int64(10), rev.Quantity)
	assert.Equal(t, int64(15), rev.PreviousStock)
	assert.Equal(t, int64(5), rev.NewStock)
	assert.Equal(t, appinv.ReversalReferencePrefix+original.ID, rev.Reference)
	require.NotNil(t, rev.ReversalOf)
	assert.Equal(t, original.ID, *rev.ReversalOf)
	assert.Equal(t, int64(5), h.stock(t, "p1"))

	// La entrada original sigue intacta.
	got, err := h.store.Movements().GetMovement(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.NewStock, got.NewStock)
}

func TestReverseMovement_SoloUnaVez(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "p1", 20)
	ctx := context.Background()
	original, err := h.engine.ApplyMovement(ctx, out("p1", 4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = h.engine.ReverseMovement(ctx, original.ID, "u1", "")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyReversed)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(20), h.stock(t, "p1"))
}

func TestReverseMovement_NoRevierteUnaReversion(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "p1", 0)
	ctx := context.Background()
	original, _ := h.engine.ApplyMovement(ctx, in("p1", 3))
	rev, err := h.engine.ReverseMovement(ctx, original.ID, "", "")
	require.NoError(t, err)

	_, err = h.engine.ReverseMovement(ctx, rev.ID, "", "")
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestReverseMovement_MovimientoInexistente(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.engine.ReverseMovement(context.Background(), "nope", "", "")
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
}

// Revertir una entrada cuyo stock ya se consumió es un rechazo de negocio.
func TestReverseMovement_StockInsuficiente(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "p1", 0)
	ctx := context.Background()
	original, _ := h.engine.ApplyMovement(ctx, in("p1", 10))
	_, err := h.engine.ApplyMovement(ctx, out("p1", 8))
	require.NoError(t, err)

	_, err = h.engine.ReverseMovement(ctx, original.ID, "", "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), h.stock(t, "p1"))
}

func TestReverseMovement_AjusteInvierteSentido(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "p1", 10)
	ctx := context.Background()
	original, err := h.engine.ApplyMovement(ctx, appinv.MovementInput{
		ProductID: "p1", Type: entity.MovementTypeAdjustment, Direction: entity.DirectionDecrease, Quantity: 3,
	})
	require.NoError(t, err)

	rev, err := h.engine.ReverseMovement(ctx, original.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAdjustment, rev.Type)
	assert.Equal(t, entity.DirectionIncrease, rev.Direction)
	assert.Equal(t, int64(10), rev.NewStock)
}
