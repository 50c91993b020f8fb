package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre el ledger.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// SumByType agrupa cantidades y valores por tipo y sentido en [from, to).
// Los movimientos sin precio suman 0 al valor.
func (r *AnalyticsRepo) SumByType(ctx context.Context, productID string, from, to time.Time) ([]repository.MovementSummaryRow, error) {
	sb := psql.Select(
		"type",
		"direction",
		"COUNT(*)",
		"COALESCE(SUM(quantity), 0)::BIGINT",
		"COALESCE(SUM(total_price), 0)",
	).
		From("stock_movements").
		Where(squirrel.GtOrEq{"moved_at": from}).
		Where(squirrel.Lt{"moved_at": to}).
		GroupBy("type", "direction").
		OrderBy("type", "direction")
	if productID != "" {
		sb = sb.Where(squirrel.Eq{"product_id": productID})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sum by type: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("sum by type", err)
	}
	defer rows.Close()
	var out []repository.MovementSummaryRow
	for rows.Next() {
		var row repository.MovementSummaryRow
		if err := rows.Scan(&row.Type, &row.Direction, &row.Movements, &row.Quantity, &row.TotalValue); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
