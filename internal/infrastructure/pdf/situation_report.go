// Package pdf genera el reporte de situación de un centro de evacuación
// (ocupación actual, flujo de la ventana, proyección y nivel de riesgo).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Centro + Municipio/Barangay │ Fecha de generación  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  NIVEL DE RIESGO + puntaje                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Indicador | Valor                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RECOMENDACIÓN                                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}

	levelColors = map[string]*props.Color{
		"LOW":      {Red: 46, Green: 125, Blue: 50},
		"MODERATE": {Red: 230, Green: 150, Blue: 0},
		"HIGH":     {Red: 230, Green: 81, Blue: 0},
		"CRITICAL": {Red: 183, Green: 28, Blue: 28},
	}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa occupancy.ReportRenderer usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// RenderRiskReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) RenderRiskReport(
	_ context.Context,
	center *entity.EvacuationCenter,
	report dto.RiskReportResponse,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de situación - "+center.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(center, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(levelRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(indicatorRows(report)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(recommendationRow(report))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(center *entity.EvacuationCenter, generatedAt time.Time) core.Row {
	location := nonEmpty(center.Municipality, "—")
	if center.Barangay != "" {
		location += " / " + center.Barangay
	}
	return row.New(18).Add(
		col.New(8).Add(
			text.New(nonEmpty(center.Name, center.ID), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(location, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("REPORTE DE SITUACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func levelRow(report dto.RiskReportResponse) core.Row {
	c, ok := levelColors[report.RiskLevel]
	if !ok {
		c = colorGray
	}
	return row.New(16).Add(
		col.New(6).Add(
			text.New("NIVEL DE RIESGO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(report.RiskLevel, props.Text{Style: fontstyle.Bold, Size: 16, Color: c, Top: 6}),
		),
		col.New(6).Add(
			text.New("Puntaje", props.Text{Size: 8, Align: align.Right, Color: colorGray, Top: 1}),
			text.New(fixed(report.RiskScore, 4), props.Text{Style: fontstyle.Bold, Size: 14, Align: align.Right, Top: 6}),
		),
	)
}

func tableHeaderRow() core.Row {
	return row.New(7).Add(
		col.New(8).Add(text.New("Indicador", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1})),
		col.New(4).Add(text.New("Valor", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1})),
	)
}

// indicatorRows una fila por cifra del reporte.
func indicatorRows(r dto.RiskReportResponse) []core.Row {
	latest := "sin registros"
	if r.LatestLogTime != nil {
		latest = r.LatestLogTime.Format("02/01/2006 15:04")
	}
	items := [][2]string{
		{"Capacidad (individuos)", strconv.Itoa(r.Capacity)},
		{"Último registro", latest},
		{"Ocupación actual", strconv.Itoa(r.CurrentTotal)},
		{"Tasa de ocupación", percent(r.Occupancy)},
		{fmt.Sprintf("Ingresos en ventana (%d min)", r.WindowMinutes), strconv.Itoa(r.TotalInWindow)},
		{fmt.Sprintf("Salidas en ventana (%d min)", r.WindowMinutes), strconv.Itoa(r.TotalOutWindow)},
		{"Flujo neto", strconv.Itoa(r.NetFlow)},
		{"Tasa neta por minuto", fixed(r.NetRatePerMin, 4)},
		{fmt.Sprintf("Ocupación proyectada (%d min)", r.HorizonMinutes), strconv.Itoa(r.PredictedTotal)},
		{"Tasa proyectada", percent(r.PredictedOccupancy)},
		{"Población vulnerable", strconv.Itoa(r.VulnerableTotal)},
		{"Proporción vulnerable", percent(r.VulnerabilityRatio)},
	}
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(8).Add(text.New(it[0], props.Text{Size: 8, Top: 1})),
			col.New(4).Add(text.New(it[1], props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func recommendationRow(r dto.RiskReportResponse) core.Row {
	return row.New(16).Add(col.New(12).Add(
		text.New("RECOMENDACIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(r.Recommendation, props.Text{Size: 9, Top: 7}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func fixed(x float64, places int32) string {
	return decimal.NewFromFloat(x).StringFixed(places)
}

// percent 0.9125 → "91.25 %".
func percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).StringFixed(2) + " %"
}
