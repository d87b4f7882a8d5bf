// Package pdf genera el reporte de conciliación stock-caja de un local.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Local + fecha/turno  │  Veredicto de compensación  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  STOCK: Producto | Esperado | Real | Dif | % | Valor | Sev  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CAJA: Caja | Esperado | Real | Dif | % | Sev               │
//	│  Total local                                                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con la clave + fecha de emisión                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

var _ reconciliation.ReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorMedium  = &props.Color{Red: 204, Green: 122, Blue: 0}
	colorHigh    = &props.Color{Red: 178, Green: 34, Blue: 34}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa reconciliation.ReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateReconciliationPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReconciliationPDF(_ context.Context, r *reconciliation.Report) ([]byte, error) {
	if r == nil || r.Location == nil {
		return nil, fmt.Errorf("pdf: reporte sin local")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Conciliación stock-caja", true).
		WithAuthor(r.Location.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionTitle(fmt.Sprintf("DIFERENCIAS DE STOCK (%d)", len(r.Stock))))
	if len(r.Stock) == 0 {
		m.AddRows(emptyRow("Sin diferencias de stock."))
	} else {
		m.AddRows(stockHeaderRow())
		m.AddRows(stockRows(r.Stock)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle(fmt.Sprintf("DIFERENCIAS DE CAJA (%d)", len(r.Cash))))
	if len(r.Cash) == 0 {
		m.AddRows(emptyRow("Sin diferencias de caja."))
	} else {
		m.AddRows(cashHeaderRow())
		m.AddRows(cashRows(r.Cash)...)
		if r.LocationCash != nil {
			m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
			m.AddRows(locationCashRow(r.LocationCash))
		}
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(r))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: local y fecha/turno (izq), veredicto de compensación (der).
func headerRow(r *reconciliation.Report) core.Row {
	turno := "ambos turnos"
	if r.Shift != nil {
		turno = "turno " + string(*r.Shift)
	}
	verdict, detail := "Sin análisis", ""
	if r.Verdict != nil {
		verdict = statusLabel(r.Verdict.Status)
		detail = fmt.Sprintf("Stock $%s  |  Caja $%s  |  Neto $%s",
			formatMoney(r.Verdict.StockValue), formatMoney(r.Verdict.CashValue), formatMoney(r.Verdict.NetDifference))
		if r.Verdict.Status.Compensates() {
			verdict += " (" + r.Verdict.CompensationPercentage.StringFixed(2) + "%)"
		}
	}

	return row.New(20).Add(
		col.New(6).Add(
			text.New(r.Location.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Fecha: %s  |  %s", r.Date.Format("02/01/2006"), turno), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(6).Add(
			text.New("COMPENSACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(verdict, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6,
			}),
			text.New(detail, props.Text{
				Size: 7.5, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func emptyRow(s string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(s, props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a,
		Color: colorWhite, Top: 2, Left: 1, Right: 1,
	}))
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func severityCell(s entity.Severity, size int) core.Col {
	p := props.Text{Size: 8, Align: align.Center, Top: 1, Style: fontstyle.Bold}
	switch s {
	case entity.SeverityHigh:
		p.Color = colorHigh
	case entity.SeverityMedium:
		p.Color = colorMedium
	default:
		p.Style = fontstyle.Normal
		p.Color = colorGray
	}
	return col.New(size).Add(text.New(severityLabel(s), p))
}

func stockHeaderRow() core.Row {
	return row.New(8).
		WithStyle(&props.Cell{BackgroundColor: colorPrimary}).
		Add(
			headerCell("Producto", 4, align.Left),
			headerCell("Esperado", 1, align.Right),
			headerCell("Real", 1, align.Right),
			headerCell("Dif.", 1, align.Right),
			headerCell("%", 1, align.Right),
			headerCell("Valor", 2, align.Right),
			headerCell("Severidad", 2, align.Center),
		)
}

func stockRows(list []*entity.StockDiscrepancy) []core.Row {
	rows := make([]core.Row, 0, len(list))
	for _, d := range list {
		name := d.ProductName
		if name == "" {
			name = d.ProductID
		}
		pct := "—"
		if d.DifferencePercent != nil {
			pct = d.DifferencePercent.StringFixed(2)
		}
		rows = append(rows, row.New(7).Add(
			cell(name+" ("+string(d.Shift)+")", 4, align.Left),
			cell(fmt.Sprint(d.ExpectedClosingQty), 1, align.Right),
			cell(fmt.Sprint(d.ActualClosingQty), 1, align.Right),
			cell(fmt.Sprintf("%+d", d.DifferenceQty), 1, align.Right),
			cell(pct, 1, align.Right),
			cell("$"+formatMoney(d.MonetaryValue), 2, align.Right),
			severityCell(d.Severity, 2),
		))
	}
	return rows
}

func cashHeaderRow() core.Row {
	return row.New(8).
		WithStyle(&props.Cell{BackgroundColor: colorPrimary}).
		Add(
			headerCell("Caja", 2, align.Left),
			headerCell("Esperado", 2, align.Right),
			headerCell("Real", 2, align.Right),
			headerCell("Dif.", 2, align.Right),
			headerCell("%", 2, align.Right),
			headerCell("Severidad", 2, align.Center),
		)
}

func cashRows(list []*entity.CashDiscrepancy) []core.Row {
	rows := make([]core.Row, 0, len(list))
	for _, d := range list {
		label := fmt.Sprintf("Caja %d (%s)", d.RegisterIndex+1, d.Shift)
		if d.Forced {
			label += " *"
		}
		rows = append(rows, row.New(7).Add(
			cell(label, 2, align.Left),
			cell("$"+formatMoney(d.ExpectedAmount), 2, align.Right),
			cell("$"+formatMoney(d.ActualAmount), 2, align.Right),
			cell("$"+formatMoney(d.DifferenceAmount), 2, align.Right),
			cell(d.DifferencePercent.StringFixed(2), 2, align.Right),
			severityCell(d.Severity, 2),
		))
	}
	return rows
}

func locationCashRow(l *entity.LocationCashDiscrepancy) core.Row {
	return row.New(8).Add(
		col.New(6).Add(text.New("Total local", props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 1.5, Left: 1, Color: colorPrimary,
		})),
		col.New(4).Add(text.New("$"+formatMoney(l.DifferenceAmount), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1.5, Right: 1,
		})),
		severityCell(l.Severity, 2),
	)
}

// footerRow: QR con la clave de conciliación + leyenda.
func footerRow(r *reconciliation.Report) core.Row {
	key := fmt.Sprintf("%s/%d", r.Date.Format(entity.DateLayout), r.Location.ID)
	if r.Shift != nil {
		key += "/" + string(*r.Shift)
	}
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(key, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Clave: "+key, props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Emitido: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			text.New("* fila de caja registrada sin diferencia (forzada).", props.Text{Size: 6.5, Top: 18, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func severityLabel(s entity.Severity) string {
	switch s {
	case entity.SeverityHigh:
		return "ALTA"
	case entity.SeverityMedium:
		return "MEDIA"
	}
	return "—"
}

func statusLabel(s entity.CompensationStatus) string {
	switch s {
	case entity.CompensationBalanced:
		return "Sin diferencias"
	case entity.CompensationCompensated:
		return "Compensado"
	case entity.CompensationPartiallyCompensated:
		return "Parcialmente compensado"
	case entity.CompensationWeaklyCompensated:
		return "Débilmente compensado"
	case entity.CompensationSameDirection:
		return "Misma dirección"
	case entity.CompensationCashOnly:
		return "Solo caja"
	case entity.CompensationStockOnly:
		return "Solo stock"
	}
	return "Indeterminado"
}

// formatMoney formatea con puntos de miles y coma decimal.
// Ej: -12000 → "-12.000,00", 1234567.5 → "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(c)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
