// Package analytics contiene los reportes de solo lectura calculados a partir del ledger.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
)

const defaultReportDays = 30

// ReportUseCase agregados del ledger: resumen por período, acumulados y kardex.
// Ninguna operación modifica el ledger.
type ReportUseCase struct {
	analytics repository.AnalyticsRepository
	products  repository.ProductRepository
	movements repository.StockMovementReader
	signals   SignalLister
	pdf       KardexPDFGenerator
	clock     clock.Clock
}

// NewReportUseCase construye el caso de uso. signals y pdf pueden ser nil.
func NewReportUseCase(
	analytics repository.AnalyticsRepository,
	products repository.ProductRepository,
	movements repository.StockMovementReader,
	signals SignalLister,
	pdf KardexPDFGenerator,
	clk clock.Clock,
) *ReportUseCase {
	return &ReportUseCase{
		analytics: analytics,
		products:  products,
		movements: movements,
		signals:   signals,
		pdf:       pdf,
		clock:     clk,
	}
}

// MovementSummary suma entradas y salidas en [from, to). Sin fechas usa los últimos 30 días.
// Corre en paralelo la agregación y el conteo de alertas de reposición.
func (uc *ReportUseCase) MovementSummary(ctx context.Context, productID, fromParam, toParam string) (*dto.MovementSummaryResponse, error) {
	from, to, err := uc.period(fromParam, toParam)
	if err != nil {
		return nil, err
	}
	if productID != "" {
		if _, err := uc.product(ctx, productID); err != nil {
			return nil, err
		}
	}

	var rows []repository.MovementSummaryRow
	alerts := 0
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = uc.analytics.SumByType(gctx, productID, from, to)
		if err != nil {
			return fmt.Errorf("reporte: suma por tipo: %w", err)
		}
		return nil
	})
	if uc.signals != nil && productID == "" {
		g.Go(func() error {
			res, err := uc.signals.ListSignals(gctx, "", dto.PageRequest{Limit: 1})
			if err != nil {
				return fmt.Errorf("reporte: alertas de reposición: %w", err)
			}
			alerts = res.Page.Total
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &domain.PersistenceError{Op: "movement summary", Err: err}
	}

	out := &dto.MovementSummaryResponse{
		ProductID:     productID,
		From:          from,
		To:            to,
		Lines:         make([]dto.MovementSummaryLine, 0, len(rows)),
		ValueIn:       decimal.Zero,
		ValueOut:      decimal.Zero,
		ReorderAlerts: alerts,
	}
	for _, r := range rows {
		out.Lines = append(out.Lines, dto.MovementSummaryLine{
			Type: r.Type, Direction: r.Direction, Movements: r.Movements, Quantity: r.Quantity, TotalValue: r.TotalValue.Round(2),
		})
		if r.Direction == entity.DirectionIncrease {
			out.TotalIn += r.Quantity
			out.ValueIn = out.ValueIn.Add(r.TotalValue)
		} else {
			out.TotalOut += r.Quantity
			out.ValueOut = out.ValueOut.Add(r.TotalValue)
		}
	}
	out.NetChange = out.TotalIn - out.TotalOut
	out.ValueIn = out.ValueIn.Round(2)
	out.ValueOut = out.ValueOut.Round(2)
	return out, nil
}

// RunningTotals saldo acumulado tras cada movimiento del producto.
func (uc *ReportUseCase) RunningTotals(ctx context.Context, productID, fromParam, toParam string) (*dto.RunningTotalsResponse, error) {
	data, err := uc.kardex(ctx, productID, fromParam, toParam)
	if err != nil {
		return nil, err
	}
	out := &dto.RunningTotalsResponse{
		ProductID:    data.Product.ID,
		SKU:          data.Product.SKU,
		ProductName:  data.Product.Name,
		OpeningStock: data.OpeningStock,
		Items:        make([]dto.RunningTotalDTO, 0, len(data.Rows)),
	}
	for _, r := range data.Rows {
		out.Items = append(out.Items, dto.RunningTotalDTO{
			MovementID: r.Movement.ID,
			Sequence:   r.Movement.Sequence,
			Type:       r.Movement.Type,
			MovedAt:    r.Movement.MovedAt,
			Delta:      r.Delta,
			Balance:    r.Balance,
			TotalIn:    r.TotalIn,
			TotalOut:   r.TotalOut,
		})
	}
	return out, nil
}

// KardexPDF genera el PDF del kardex. Devuelve los bytes y el nombre sugerido del archivo.
func (uc *ReportUseCase) KardexPDF(ctx context.Context, productID, fromParam, toParam string) ([]byte, string, error) {
	if uc.pdf == nil {
		return nil, "", fmt.Errorf("kardex: generador PDF no configurado")
	}
	data, err := uc.kardex(ctx, productID, fromParam, toParam)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.GenerateKardexPDF(ctx, *data)
	if err != nil {
		return nil, "", fmt.Errorf("kardex: generar PDF: %w", err)
	}
	return b, fmt.Sprintf("kardex-%s.pdf", data.Product.SKU), nil
}

// kardex carga el producto y sus movimientos en paralelo.
func (uc *ReportUseCase) kardex(ctx context.Context, productID, fromParam, toParam string) (*KardexData, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "es obligatorio"}
	}
	from, err := dto.ParseDateParam("from", fromParam, false)
	if err != nil {
		return nil, err
	}
	to, err := dto.ParseDateParam("to", toParam, true)
	if err != nil {
		return nil, err
	}

	var product *entity.Product
	var entries []*entity.StockMovement
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = uc.product(gctx, productID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = uc.movements.EntriesForProduct(gctx, productID, repository.MovementFilter{From: from, To: to})
		if err != nil {
			return &domain.PersistenceError{Op: "list movements", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opening, err := uc.openingStock(ctx, product, entries, from, to)
	if err != nil {
		return nil, err
	}
	return &KardexData{
		Product:      product,
		OpeningStock: opening,
		Rows:         domaininv.RunningTotals(entries),
		From:         from,
		To:           to,
		GeneratedAt:  uc.clock.Now(),
	}, nil
}

// openingStock stock al inicio del rango. Sin movimientos en el rango se toma el saldo del
// último movimiento anterior a from o, si no lo hay, el previo del primero posterior a to.
// Solo un producto sin movimientos fuera del rango usa el stock actual.
func (uc *ReportUseCase) openingStock(ctx context.Context, product *entity.Product, entries []*entity.StockMovement, from, to *time.Time) (int64, error) {
	if len(entries) > 0 {
		return entries[0].PreviousStock, nil
	}
	if from != nil {
		before, err := uc.movements.EntriesForProduct(ctx, product.ID, repository.MovementFilter{To: from, Descending: true, Limit: 1})
		if err != nil {
			return 0, &domain.PersistenceError{Op: "opening stock", Err: err}
		}
		if len(before) > 0 {
			return before[0].NewStock, nil
		}
	}
	if to != nil {
		after, err := uc.movements.EntriesForProduct(ctx, product.ID, repository.MovementFilter{From: to, Limit: 1})
		if err != nil {
			return 0, &domain.PersistenceError{Op: "opening stock", Err: err}
		}
		if len(after) > 0 {
			return after[0].PreviousStock, nil
		}
	}
	return product.StockQuantity, nil
}

func (uc *ReportUseCase) product(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get product", Err: err}
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (uc *ReportUseCase) period(fromParam, toParam string) (time.Time, time.Time, error) {
	from, err := dto.ParseDateParam("from", fromParam, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := dto.ParseDateParam("to", toParam, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := uc.clock.Now()
	if to != nil {
		end = *to
	}
	begin := end.AddDate(0, 0, -defaultReportDays)
	if from != nil {
		begin = *from
	}
	if !begin.Before(end) {
		return time.Time{}, time.Time{}, &domain.ValidationError{Field: "from", Reason: "debe ser anterior a to"}
	}
	return begin, end, nil
}
