package postgres

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	db TxBeginner
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(db TxBeginner) *TxRunner {
	return &TxRunner{db: db}
}

// Run inicia una transacción, ejecuta fn con el ledger atado a la tx y hace Commit o Rollback.
// Los bloqueos de fila tomados por ReadCurrentQuantity se liberan al terminar la tx.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, ledger repository.StockLedger) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	if err := fn(ctx, NewStockLedger(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	committed = true
	return nil
}
