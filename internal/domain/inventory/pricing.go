package inventory

import "github.com/shopspring/decimal"

// MinorUnitDigits decimales de la unidad monetaria mínima.
const MinorUnitDigits = 2

// MovementTotal calcula unitPrice * quantity y luego redondea a la unidad mínima.
func MovementTotal(unitPrice decimal.Decimal, quantity int64) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity)).Round(MinorUnitDigits)
}
