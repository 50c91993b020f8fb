package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

// AuditSink destino de auditoría de los cambios de catálogo.
type AuditSink interface {
	Record(ctx context.Context, e audit.Entry)
}

// ProductUseCase casos de uso del catálogo. El stock solo cambia vía movimientos;
// aquí únicamente se fija el stock de apertura al crear.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	audit      AuditSink
	clock      clock.Clock
}

// NewProductUseCase construye el caso de uso. Con categories nil la existencia
// de la categoría la verifica el repositorio.
func NewProductUseCase(repo repository.ProductRepository, categories repository.CategoryRepository, auditSink AuditSink, clk clock.Clock) *ProductUseCase {
	return &ProductUseCase{repo: repo, categories: categories, audit: auditSink, clock: clk}
}

// Create crea un nuevo producto y lo audita como INSERT.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if err := validateProduct(in.SKU, in.Name, in.UnitPrice, in.LowStockThreshold, in.ReorderPoint); err != nil {
		return nil, err
	}
	if in.InitialStock < 0 {
		return nil, &domain.ValidationError{Field: "initial_stock", Reason: "no puede ser negativo"}
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get product by sku", Err: err}
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.clock.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		CategoryID:        in.CategoryID,
		SKU:               in.SKU,
		Name:              in.Name,
		Description:       in.Description,
		UnitPrice:         in.UnitPrice,
		StockQuantity:     in.InitialStock,
		LowStockThreshold: in.LowStockThreshold,
		ReorderPoint:      in.ReorderPoint,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.record(ctx, userID, entity.AuditActionInsert, product.ID, "producto creado", nil, audit.SnapshotProduct(product))
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar el stock (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, userID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	before := audit.SnapshotProduct(product)

	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.CategoryID != nil {
		categoryID := strings.TrimSpace(*in.CategoryID)
		if err := uc.checkCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		product.CategoryID = categoryID
	}
	if in.UnitPrice != nil {
		product.UnitPrice = *in.UnitPrice
	}
	if in.LowStockThreshold != nil {
		product.LowStockThreshold = in.LowStockThreshold
	}
	if in.ReorderPoint != nil {
		product.ReorderPoint = in.ReorderPoint
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	if err := validateProduct(product.SKU, product.Name, product.UnitPrice, product.LowStockThreshold, product.ReorderPoint); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	uc.record(ctx, userID, entity.AuditActionUpdate, product.ID, "producto actualizado", before, audit.SnapshotProduct(product))
	return toProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	filter := repository.ProductFilter{CategoryID: in.CategoryID, Search: in.Search, ActiveOnly: in.ActiveOnly}
	list, err := uc.repo.List(ctx, filter, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// checkCategory todo producto pertenece a una categoría existente.
func (uc *ProductUseCase) checkCategory(ctx context.Context, id string) error {
	if id == "" {
		return &domain.ValidationError{Field: "category_id", Reason: "es obligatorio"}
	}
	if uc.categories == nil {
		return nil
	}
	c, err := uc.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return &domain.ValidationError{Field: "category_id", Reason: "no existe"}
	}
	return nil
}

func (uc *ProductUseCase) record(ctx context.Context, userID, action, id, details string, oldV, newV *audit.ProductSnapshot) {
	if uc.audit == nil {
		return
	}
	e := audit.Entry{
		TableName: "Product",
		RecordID:  id,
		Action:    action,
		Severity:  entity.SeverityInfo,
		Details:   details,
		UserID:    userID,
	}
	// Un *ProductSnapshot nil dentro de any no es nil: solo se asignan los presentes.
	if oldV != nil {
		e.OldValues = oldV
	}
	if newV != nil {
		e.NewValues = newV
	}
	uc.audit.Record(ctx, e)
}

func validateProduct(sku, name string, price decimal.Decimal, low, reorder *int64) error {
	switch {
	case sku == "" || len(sku) > 100:
		return &domain.ValidationError{Field: "sku", Reason: "obligatorio, máximo 100 caracteres"}
	case name == "" || len(name) > 200:
		return &domain.ValidationError{Field: "name", Reason: "obligatorio, máximo 200 caracteres"}
	case price.IsNegative():
		return &domain.ValidationError{Field: "unit_price", Reason: "no puede ser negativo"}
	case low != nil && *low < 0:
		return &domain.ValidationError{Field: "low_stock_threshold", Reason: "no puede ser negativo"}
	case reorder != nil && *reorder < 0:
		return &domain.ValidationError{Field: "reorder_point", Reason: "no puede ser negativo"}
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                p.ID,
		CategoryID:        p.CategoryID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		UnitPrice:         p.UnitPrice,
		StockQuantity:     p.StockQuantity,
		LedgerSequence:    p.LedgerSequence,
		LowStockThreshold: p.LowStockThreshold,
		ReorderPoint:      p.ReorderPoint,
		Active:            p.Active,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
