package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.StockLedger         = (*StockLedgerRepo)(nil)
	_ repository.StockMovementReader = (*StockLedgerRepo)(nil)
)

var movementColumns = []string{
	"id", "product_id", "sequence", "type", "direction", "quantity", "previous_stock", "new_stock",
	"unit_price", "total_price", "reference", "notes", "reversal_of", "moved_at", "user_id",
}

// StockLedgerRepo ledger de movimientos sobre PostgreSQL. Atado a una tx implementa StockLedger;
// sobre el pool sirve como StockMovementReader.
type StockLedgerRepo struct {
	q Querier
}

// NewStockLedger construye el ledger. Pasar la tx para escrituras o el pool para lecturas.
func NewStockLedger(q Querier) *StockLedgerRepo {
	return &StockLedgerRepo{q: q}
}

// ReadCurrentQuantity lee el producto con SELECT ... FOR UPDATE: la fila queda bloqueada
// hasta el fin de la transacción y otro movimiento del mismo producto espera.
func (r *StockLedgerRepo) ReadCurrentQuantity(ctx context.Context, productID string) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock product: %w", err)
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, mapError("lock product", err)
	}
	return p, nil
}

// AppendEntryAndUpdateQuantity hace el compare-and-set del producto y luego inserta la entrada.
// Si el UPDATE no afecta filas, el stock o la secuencia cambiaron desde la lectura.
func (r *StockLedgerRepo) AppendEntryAndUpdateQuantity(ctx context.Context, entry *entity.StockMovement, newQuantity int64) error {
	if entry.Quantity <= 0 || newQuantity < 0 || entry.NewStock != newQuantity ||
		!entry.Balanced() {
		return fmt.Errorf("append entry: %w", domain.ErrInvalidInput)
	}

	update, args, err := psql.Update("products").
		Set("stock_quantity", newQuantity).
		Set("ledger_sequence", entry.Sequence).
		Set("updated_at", entry.MovedAt).
		Where(squirrel.Eq{
			"id":              entry.ProductIDValue(),
			"stock_quantity":  entry.PreviousStock,
			"ledger_sequence": entry.Sequence - 1,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}
	cmd, err := r.q.Exec(ctx, update, args...)
	if err != nil {
		return mapError("update stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update stock: %w", domain.ErrConcurrentModification)
	}

	insert, args, err := psql.Insert("stock_movements").
		Columns(movementColumns...).
		Values(
			entry.ID, entry.ProductID, entry.Sequence, entry.Type, entry.Direction, entry.Quantity,
			entry.PreviousStock, entry.NewStock, entry.UnitPrice, entry.TotalPrice, entry.Reference,
			entry.Notes, entry.ReversalOf, entry.MovedAt, entry.UserID,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if _, err := r.q.Exec(ctx, insert, args...); err != nil {
		return mapError("insert movement", err)
	}
	return nil
}

// EntriesForProduct devuelve los movimientos del producto ordenados por secuencia.
func (r *StockLedgerRepo) EntriesForProduct(ctx context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	sb := psql.Select(movementColumns...).
		From("stock_movements").
		Where(squirrel.Eq{"product_id": productID})
	if len(f.Types) > 0 {
		sb = sb.Where(squirrel.Eq{"type": f.Types})
	}
	if f.From != nil {
		sb = sb.Where(squirrel.GtOrEq{"moved_at": *f.From})
	}
	if f.To != nil {
		sb = sb.Where(squirrel.Lt{"moved_at": *f.To})
	}
	if f.Reference != "" {
		sb = sb.Where(squirrel.Eq{"reference": f.Reference})
	}
	if f.Descending {
		sb = sb.OrderBy("sequence DESC")
	} else {
		sb = sb.OrderBy("sequence ASC")
	}
	if f.Limit > 0 {
		sb = sb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		sb = sb.Offset(uint64(f.Offset))
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// GetMovement obtiene un movimiento por ID; nil, nil si no existe.
func (r *StockLedgerRepo) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, "get movement", squirrel.Eq{"id": id})
}

// FindReversal devuelve el movimiento que compensa a movementID, o nil, nil.
func (r *StockLedgerRepo) FindReversal(ctx context.Context, movementID string) (*entity.StockMovement, error) {
	return r.getOne(ctx, "find reversal", squirrel.Eq{"reversal_of": movementID})
}

func (r *StockLedgerRepo) getOne(ctx context.Context, op string, where squirrel.Eq) (*entity.StockMovement, error) {
	query, args, err := psql.Select(movementColumns...).From("stock_movements").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	m, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return m, nil
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Sequence, &m.Type, &m.Direction, &m.Quantity, &m.PreviousStock, &m.NewStock,
		&m.UnitPrice, &m.TotalPrice, &m.Reference, &m.Notes, &m.ReversalOf, &m.MovedAt, &m.UserID,
	)
	if err != nil {
		return nil, err
	}
	m.MovedAt = m.MovedAt.UTC()
	return &m, nil
}
