package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// MovementQueryUseCase lecturas del ledger. Nunca lo modifica.
type MovementQueryUseCase struct {
	products  repository.ProductRepository
	movements repository.StockMovementReader
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(products repository.ProductRepository, movements repository.StockMovementReader) *MovementQueryUseCase {
	return &MovementQueryUseCase{products: products, movements: movements}
}

// ListMovements historial paginado de un producto.
func (uc *MovementQueryUseCase) ListMovements(ctx context.Context, productID string, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	if _, err := uc.product(ctx, productID); err != nil {
		return nil, err
	}
	filter, err := movementFilterFrom(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.movements.EntriesForProduct(ctx, productID, filter)
	if err != nil {
		return nil, classifyStoreError("list movements", err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// GetMovement obtiene una entrada del ledger.
func (uc *MovementQueryUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movements.GetMovement(ctx, id)
	if err != nil {
		return nil, classifyStoreError("get movement", err)
	}
	if m == nil {
		return nil, domain.ErrMovementNotFound
	}
	out := ToMovementResponse(m)
	return &out, nil
}

// VerifyLedger reproduce el ledger completo del producto y lo contrasta con su stock actual.
func (uc *MovementQueryUseCase) VerifyLedger(ctx context.Context, productID string) (*dto.LedgerVerificationResponse, error) {
	p, err := uc.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	entries, err := uc.movements.EntriesForProduct(ctx, productID, repository.MovementFilter{})
	if err != nil {
		return nil, classifyStoreError("list movements", err)
	}
	report := domaininv.VerifyChain(entries, p.StockQuantity)
	out := &dto.LedgerVerificationResponse{
		ProductID:    productID,
		Entries:      report.Entries,
		InitialStock: report.InitialStock,
		LedgerStock:  report.LedgerStock,
		ProductStock: report.ProductStock,
		Consistent:   report.Consistent,
		Violations:   make([]dto.LedgerViolationDTO, 0, len(report.Violations)),
	}
	for _, v := range report.Violations {
		out.Violations = append(out.Violations, dto.LedgerViolationDTO{MovementID: v.MovementID, Sequence: v.Sequence, Reason: v.Reason})
	}
	return out, nil
}

func (uc *MovementQueryUseCase) product(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "es obligatorio"}
	}
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, classifyStoreError("get product", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func movementFilterFrom(in dto.MovementListRequest) (repository.MovementFilter, error) {
	in.DefaultPage()
	f := repository.MovementFilter{Limit: in.Limit, Offset: in.Offset}
	if in.Limit > 500 {
		f.Limit = 500
	}
	if in.Type != "" {
		for _, t := range strings.Split(in.Type, ",") {
			t = strings.TrimSpace(t)
			switch t {
			case entity.MovementTypeIn, entity.MovementTypeOut, entity.MovementTypeAdjustment, entity.MovementTypeTransfer:
				f.Types = append(f.Types, t)
			default:
				return f, &domain.ValidationError{Field: "type", Reason: "tipo de movimiento desconocido"}
			}
		}
	}
	switch strings.ToLower(in.Order) {
	case "", "asc":
	case "desc":
		f.Descending = true
	default:
		return f, &domain.ValidationError{Field: "order", Reason: "debe ser asc o desc"}
	}
	var err error
	if f.From, err = dto.ParseDateParam("from", in.From, false); err != nil {
		return f, err
	}
	if f.To, err = dto.ParseDateParam("to", in.To, true); err != nil {
		return f, err
	}
	return f, nil
}
