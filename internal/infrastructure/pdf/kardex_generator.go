// Package pdf genera el kardex (historial valorizado de movimientos) de un producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: SKU + Nombre          │  Periodo + Fecha de emisión │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Saldo inicial / Entradas / Salidas / Saldo final  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | # | Tipo | Ref. | Entrada | Salida | Saldo  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR de verificación + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

var _ analytics.KardexPDFGenerator = (*MarotoKardexGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 160, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoKardexGenerator implementa analytics.KardexPDFGenerator usando Maroto v2.
type MarotoKardexGenerator struct {
	author string
}

// NewMarotoKardexGenerator construye el generador. author aparece en los metadatos del PDF.
func NewMarotoKardexGenerator(author string) *MarotoKardexGenerator {
	return &MarotoKardexGenerator{author: author}
}

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *MarotoKardexGenerator) GenerateKardexPDF(_ context.Context, data analytics.KardexData) ([]byte, error) {
	if data.Product == nil {
		return nil, fmt.Errorf("pdf: kardex sin producto")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+data.Product.SKU, true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(openingRow(data.OpeningStock))
	m.AddRows(tableDetailRows(data.Rows)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: SKU + nombre (izq) y periodo + fecha de emisión (der).
func headerRow(data analytics.KardexData) core.Row {
	p := data.Product
	return row.New(18).Add(
		col.New(7).Add(
			text.New(p.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("SKU: "+p.SKU, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(period(data), props.Text{Size: 9, Align: align.Right, Top: 7}),
			text.New("Emitido: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// summaryRow: saldo inicial, totales del periodo y saldo final.
func summaryRow(data analytics.KardexData) core.Row {
	var in, out int64
	closing := data.OpeningStock
	if n := len(data.Rows); n > 0 {
		last := data.Rows[n-1]
		in, out, closing = last.TotalIn, last.TotalOut, last.Balance
	}
	cell := func(label string, value int64) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(formatQty(value), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 5}),
		)
	}
	return row.New(13).Add(
		cell("Saldo inicial", data.OpeningStock),
		cell("Entradas", in),
		cell("Salidas", out),
		cell("Saldo final", closing),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("#", 1, align.Center),
		h("Tipo", 2, align.Left),
		h("Referencia", 2, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Saldo", 1, align.Right),
		h("Valor", 2, align.Right),
	)
}

func openingRow(opening int64) core.Row {
	return row.New(6).Add(
		col.New(9).Add(text.New("Saldo inicial", props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
		col.New(1).Add(text.New(formatQty(opening), props.Text{Size: 7, Align: align.Right, Top: 1, Right: 1})),
		col.New(2),
	)
}

// tableDetailRows: una fila por movimiento; las reversiones se marcan en rojo.
func tableDetailRows(rows []domaininv.RunningTotal) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		m := r.Movement
		var in, out string
		if r.Delta >= 0 {
			in = formatQty(r.Delta)
		} else {
			out = formatQty(-r.Delta)
		}
		style := props.Text{Size: 7, Top: 1, Left: 1}
		if m.ReversalOf != nil {
			style.Color = colorDanger
		}
		right := style
		right.Align = align.Right
		right.Right = 1
		right.Left = 0
		center := style
		center.Align = align.Center

		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(m.MovedAt.Format("02/01/2006 15:04"), style)),
			col.New(1).Add(text.New(strconv.FormatInt(m.Sequence, 10), center)),
			col.New(2).Add(text.New(typeLabel(m), style)),
			col.New(2).Add(text.New(truncate(m.Reference, 22), style)),
			col.New(1).Add(text.New(in, right)),
			col.New(1).Add(text.New(out, right)),
			col.New(1).Add(text.New(formatQty(r.Balance), right)),
			col.New(2).Add(text.New(value(m), right)),
		))
	}
	return result
}

// footerRow: QR con el último eslabón del ledger para contrastar con /verify.
func footerRow(data analytics.KardexData) core.Row {
	var seq int64
	balance := data.OpeningStock
	if n := len(data.Rows); n > 0 {
		seq = data.Rows[n-1].Movement.Sequence
		balance = data.Rows[n-1].Balance
	}
	payload := fmt.Sprintf("kardex:%s:seq=%d:saldo=%d", data.Product.ID, seq, balance)
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(payload, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Los movimientos del ledger son inmutables; las correcciones aparecen como reversiones.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(fmt.Sprintf("Último movimiento #%d, saldo %s.", seq, formatQty(balance)), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 14, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func period(data analytics.KardexData) string {
	from, to := "inicio", "hoy"
	if data.From != nil {
		from = data.From.Format("02/01/2006")
	}
	if data.To != nil {
		to = data.To.Format("02/01/2006")
	}
	return "Periodo: " + from + " - " + to
}

func typeLabel(m *entity.StockMovement) string {
	label := map[string]string{
		entity.MovementTypeIn:         "Entrada",
		entity.MovementTypeOut:        "Salida",
		entity.MovementTypeAdjustment: "Ajuste",
		entity.MovementTypeTransfer:   "Traslado",
	}[m.Type]
	if label == "" {
		label = m.Type
	}
	if m.ReversalOf != nil {
		label += " (rev.)"
	}
	return label
}

func value(m *entity.StockMovement) string {
	if m.TotalPrice == nil {
		return "-"
	}
	return "$" + formatMoney(m.TotalPrice.StringFixed(2))
}

func formatQty(n int64) string {
	if n < 0 {
		return "-" + formatMoney(strconv.FormatInt(-n, 10))
	}
	return formatMoney(strconv.FormatInt(n, 10))
}

// formatMoney inserta puntos de miles en la parte entera y coma decimal.
// Ej: "25000" → "25.000", "1234.50" → "1.234,50"
func formatMoney(s string) string {
	intPart, frac := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			intPart, frac = s[:i], s[i+1:]
			break
		}
	}
	neg := len(intPart) > 0 && intPart[0] == '-'
	if neg {
		intPart = intPart[1:]
	}
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(frac)+2)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return string(buf)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
