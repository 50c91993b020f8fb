package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Regla de signo
// ──────────────────────────────────────────────────────────────────────────────

func TestResolveDirection(t *testing.T) {
	tests := []struct {
		name      string
		typ       string
		direction string
		want      string
		wantField string
	}{
		{"entrada suma", entity.MovementTypeIn, "", entity.DirectionIncrease, ""},
		{"salida resta", entity.MovementTypeOut, "", entity.DirectionDecrease, ""},
		{"salida no acepta increase", entity.MovementTypeOut, entity.DirectionIncrease, "", "direction"},
		{"ajuste exige sentido", entity.MovementTypeAdjustment, "", "", "direction"},
		{"ajuste a la baja", entity.MovementTypeAdjustment, entity.DirectionDecrease, entity.DirectionDecrease, ""},
		{"traslado por defecto sale", entity.MovementTypeTransfer, "", entity.DirectionDecrease, ""},
		{"traslado entrante", entity.MovementTypeTransfer, entity.DirectionIncrease, entity.DirectionIncrease, ""},
		{"tipo desconocido", "gift", "", "", "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inventory.ResolveDirection(tt.typ, tt.direction)
			if tt.wantField != "" {
				var ve *domain.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantField, ve.Field)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextStock(t *testing.T) {
	next, err := inventory.NextStock(10, entity.DirectionIncrease, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), next)

	next, err = inventory.NextStock(10, entity.DirectionDecrease, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), next)

	_, err = inventory.NextStock(3, entity.DirectionDecrease, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "una salida mayor al stock no puede aplicarse")
}

func TestNextStock_Desbordamiento(t *testing.T) {
	next, err := inventory.NextStock(0, entity.DirectionIncrease, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), next)

	_, err = inventory.NextStock(5, entity.DirectionIncrease, math.MaxInt64)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = inventory.NextStock(math.MaxInt64, entity.DirectionIncrease, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCompensatingType(t *testing.T) {
	assert.Equal(t, entity.MovementTypeOut, inventory.CompensatingType(entity.MovementTypeIn))
	assert.Equal(t, entity.MovementTypeIn, inventory.CompensatingType(entity.MovementTypeOut))
	assert.Equal(t, entity.MovementTypeAdjustment, inventory.CompensatingType(entity.MovementTypeAdjustment))
	assert.Equal(t, entity.DirectionIncrease, inventory.InverseDirection(entity.DirectionDecrease))
	assert.Equal(t, entity.DirectionDecrease, inventory.InverseDirection(entity.DirectionIncrease))
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales monetarios
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementTotal_RedondeaDespuesDeMultiplicar(t *testing.T) {
	price := decimal.RequireFromString("0.335")
	// 0.335 * 3 = 1.005 → 1.01; redondear el precio primero daría 1.02.
	assert.Equal(t, "1.01", inventory.MovementTotal(price, 3).StringFixed(2))
	assert.True(t, inventory.MovementTotal(decimal.RequireFromString("12.50"), 4).Equal(decimal.NewFromInt(50)))
}
