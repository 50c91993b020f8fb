package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const signalScanBatch = 200

// statusRank orden de urgencia del reporte de reposición (menor = más urgente).
var statusRank = map[string]int{
	entity.SignalStatusCritical:      0,
	entity.SignalStatusLow:           1,
	entity.SignalStatusReorderNeeded: 2,
	entity.SignalStatusOK:            3,
}

// ListSignals genera el reporte de reposición: señales de los productos activos, las más urgentes primero.
// status vacío devuelve todos los productos fuera de estado ok; "all" incluye también los ok.
func (uc *SignalUseCase) ListSignals(ctx context.Context, status string, page dto.PageRequest) (*dto.SignalListResponse, error) {
	if status != "" && status != "all" {
		if _, ok := statusRank[status]; !ok {
			return nil, &domain.ValidationError{Field: "status", Reason: "estado de señal desconocido"}
		}
	}
	page.DefaultPage()

	var matched []dto.StockSignalResponse
	for offset := 0; ; offset += signalScanBatch {
		products, err := uc.products.List(ctx, repository.ProductFilter{ActiveOnly: true}, signalScanBatch, offset)
		if err != nil {
			return nil, classifyStoreError("list products", err)
		}
		for _, p := range products {
			sig := uc.Evaluate(ctx, p)
			if !signalMatches(sig.Status, status) {
				continue
			}
			matched = append(matched, ToSignalResponse(p, sig))
		}
		if len(products) < signalScanBatch {
			break
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if statusRank[a.Status] != statusRank[b.Status] {
			return statusRank[a.Status] < statusRank[b.Status]
		}
		if a.RequiredQuantity != b.RequiredQuantity {
			return a.RequiredQuantity > b.RequiredQuantity
		}
		return a.SKU < b.SKU
	})

	total := len(matched)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	return &dto.SignalListResponse{
		Items: append([]dto.StockSignalResponse{}, matched[start:end]...),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func signalMatches(got, want string) bool {
	switch want {
	case "":
		return got != entity.SignalStatusOK
	case "all":
		return true
	}
	return got == want
}

// ToSignalResponse convierte una señal en DTO. p puede ser nil.
func ToSignalResponse(p *entity.Product, sig entity.StockSignal) dto.StockSignalResponse {
	out := dto.StockSignalResponse{
		ProductID:         sig.ProductID,
		CurrentQuantity:   sig.CurrentQuantity,
		LowStockThreshold: sig.LowStockThreshold,
		ReorderPoint:      sig.ReorderPoint,
		Status:            sig.Status,
		RequiredQuantity:  sig.RequiredQuantity,
		EvaluatedAt:       sig.EvaluatedAt,
	}
	if p != nil {
		out.SKU = p.SKU
		out.ProductName = p.Name
	}
	return out
}
