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

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []string{
	"id", "category_id::TEXT", "sku", "name", "description", "unit_price", "stock_quantity",
	"ledger_sequence", "low_stock_threshold", "reorder_point", "active", "created_at", "updated_at",
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con su stock de apertura.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query, args, err := psql.Insert("products").
		Columns("id", "category_id", "sku", "name", "description", "unit_price", "stock_quantity",
			"ledger_sequence", "low_stock_threshold", "reorder_point", "active", "created_at", "updated_at").
		Values(p.ID, nullIfEmpty(p.CategoryID), p.SKU, p.Name, p.Description, p.UnitPrice, p.StockQuantity,
			p.LedgerSequence, p.LowStockThreshold, p.ReorderPoint, p.Active, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return mapError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", squirrel.Eq{"id": id})
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by sku", squirrel.Eq{"sku": sku})
}

// Update actualiza un producto existente. No toca stock_quantity ni ledger_sequence (se manejan vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query, args, err := psql.Update("products").
		Set("category_id", nullIfEmpty(p.CategoryID)).
		Set("sku", p.SKU).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("unit_price", p.UnitPrice).
		Set("low_stock_threshold", p.LowStockThreshold).
		Set("reorder_point", p.ReorderPoint).
		Set("active", p.Active).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product: %w", err)
	}
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapError("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// List lista productos con filtros y paginación, ordenados por SKU.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	sb := psql.Select(productColumns...).From("products").OrderBy("sku ASC")
	if f.CategoryID != "" {
		sb = sb.Where(squirrel.Eq{"category_id": f.CategoryID})
	}
	if f.ActiveOnly {
		sb = sb.Where(squirrel.Eq{"active": true})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		sb = sb.Where(squirrel.Or{squirrel.ILike{"sku": pattern}, squirrel.ILike{"name": pattern}})
	}
	if limit > 0 {
		sb = sb.Limit(uint64(limit))
	}
	if offset > 0 {
		sb = sb.Offset(uint64(offset))
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepo) getOne(ctx context.Context, op string, where squirrel.Eq) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.SKU, &p.Name, &p.Description, &p.UnitPrice, &p.StockQuantity,
		&p.LedgerSequence, &p.LowStockThreshold, &p.ReorderPoint, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
