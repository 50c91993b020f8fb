package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func mov(seq int64, dir string, qty, prev int64) *entity.StockMovement {
	m := &entity.StockMovement{ID: "m" + string(rune('0'+seq)), Sequence: seq, Direction: dir, Quantity: qty, PreviousStock: prev}
	m.NewStock = prev + m.Delta()
	return m
}

func TestVerifyChain_Consistente(t *testing.T) {
	entries := []*entity.StockMovement{
		mov(1, entity.DirectionIncrease, 20, 0),
		mov(2, entity.DirectionDecrease, 5, 20),
		mov(3, entity.DirectionDecrease, 15, 15),
	}
	r := inventory.VerifyChain(entries, 0)
	assert.True(t, r.Consistent)
	assert.Empty(t, r.Violations)
	assert.Equal(t, int64(0), r.LedgerStock)
	assert.Equal(t, 3, r.Entries)
}

func TestVerifyChain_DetectaEnlaceRoto(t *testing.T) {
	entries := []*entity.StockMovement{
		mov(1, entity.DirectionIncrease, 20, 0),
		mov(2, entity.DirectionDecrease, 5, 18),
	}
	r := inventory.VerifyChain(entries, 13)
	require.False(t, r.Consistent)
	require.Len(t, r.Violations, 1)
	assert.Equal(t, int64(2), r.Violations[0].Sequence)
}

func TestVerifyChain_StockDelProductoDifiere(t *testing.T) {
	r := inventory.VerifyChain([]*entity.StockMovement{mov(1, entity.DirectionIncrease, 4, 0)}, 7)
	assert.False(t, r.Consistent)
	assert.Equal(t, int64(4), r.LedgerStock)
	assert.Equal(t, int64(7), r.ProductStock)
}

func TestVerifyChain_SinMovimientos(t *testing.T) {
	r := inventory.VerifyChain(nil, 5)
	assert.True(t, r.Consistent)
	assert.Equal(t, int64(5), r.InitialStock)
}

func TestRunningTotals(t *testing.T) {
	totals := inventory.RunningTotals([]*entity.StockMovement{
		mov(1, entity.DirectionIncrease, 10, 0),
		mov(2, entity.DirectionDecrease, 3, 10),
		mov(3, entity.DirectionIncrease, 2, 7),
	})
	require.Len(t, totals, 3)
	assert.Equal(t, int64(9), totals[2].Balance)
	assert.Equal(t, int64(12), totals[2].TotalIn)
	assert.Equal(t, int64(3), totals[2].TotalOut)
	assert.Equal(t, int64(-3), totals[1].Delta)
}
