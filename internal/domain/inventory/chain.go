package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ChainViolation describe el primer eslabón roto del ledger de un producto.
type ChainViolation struct {
	MovementID string
	Sequence   int64
	Reason     string
}

// ChainReport resultado de reproducir el ledger de un producto.
type ChainReport struct {
	Entries      int
	InitialStock int64
	LedgerStock  int64
	ProductStock int64
	Consistent   bool
	Violations   []ChainViolation
}

// VerifyChain reproduce las entradas (ordenadas por Sequence ascendente) y comprueba:
// cantidad positiva, aritmética con signo, enlace previousStock == newStock anterior,
// secuencia contigua y que el stock del producto coincida con el último NewStock.
func VerifyChain(entries []*entity.StockMovement, productStock int64) ChainReport {
	report := ChainReport{Entries: len(entries), ProductStock: productStock, LedgerStock: productStock}
	if len(entries) == 0 {
		report.InitialStock = productStock
		report.Consistent = true
		return report
	}
	report.InitialStock = entries[0].PreviousStock

	add := func(m *entity.StockMovement, format string, args ...any) {
		report.Violations = append(report.Violations, ChainViolation{
			MovementID: m.ID, Sequence: m.Sequence, Reason: fmt.Sprintf(format, args...),
		})
	}

	var prev *entity.StockMovement
	for _, m := range entries {
		if m.Quantity <= 0 {
			add(m, "cantidad no positiva: %d", m.Quantity)
		}
		if !m.Balanced() {
			add(m, "aritmética inválida: %d %+d != %d", m.PreviousStock, m.Delta(), m.NewStock)
		}
		if m.NewStock < 0 {
			add(m, "stock negativo: %d", m.NewStock)
		}
		if prev != nil {
			if m.PreviousStock != prev.NewStock {
				add(m, "previous_stock %d no coincide con new_stock anterior %d", m.PreviousStock, prev.NewStock)
			}
			if m.Sequence != prev.Sequence+1 {
				add(m, "secuencia %d no sigue a %d", m.Sequence, prev.Sequence)
			}
		}
		prev = m
	}
	report.LedgerStock = prev.NewStock
	if report.LedgerStock != productStock {
		add(prev, "stock del producto %d difiere del ledger %d", productStock, report.LedgerStock)
	}
	report.Consistent = len(report.Violations) == 0
	return report
}

// RunningTotal saldo acumulado tras cada movimiento.
type RunningTotal struct {
	Movement *entity.StockMovement
	Delta    int64
	Balance  int64
	TotalIn  int64
	TotalOut int64
}

// RunningTotals calcula los acumulados de entradas/salidas a partir del ledger, sin modificarlo.
func RunningTotals(entries []*entity.StockMovement) []RunningTotal {
	out := make([]RunningTotal, 0, len(entries))
	var in, outQty int64
	for _, m := range entries {
		d := m.Delta()
		if d > 0 {
			in += d
		} else {
			outQty -= d
		}
		out = append(out, RunningTotal{Movement: m, Delta: d, Balance: m.NewStock, TotalIn: in, TotalOut: outQty})
	}
	return out
}
