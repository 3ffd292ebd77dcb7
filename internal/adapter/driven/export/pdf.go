package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// --- Exportação PDF ---

func (r *ExportRepositoryImpl) ExportToPDF(report entity.Report, filename, outputDir string) (string, error) {
	if err := validateRows(report.Units); err != nil {
		return "", err
	}

	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		sectionTitle(title)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(8)
	}

	drawTable := func(widths []float64, header []string, rows [][]string) {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, tr(h), "B", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range rows {
			for i, cell := range row {
				align := "L"
				if i > 0 {
					align = "R"
				}
				pdf.CellFormat(widths[i], 6, tr(truncate(cell, 40)), "", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	s := report.Summary
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Falcon Cloud Security cost estimate | run %s | %s", s.RunID, s.GeneratedAt.Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Falcon Cloud Security - Cost Estimate"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Region: %s    Accounts: %d    Grouped by: %s", s.Region, s.UnitCount, report.GroupBy)), "", 1, "L", true, 0, "")
	pdf.Ln(10)

	sectionTitle("Monthly Cost")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(95, 12, tr(fmt.Sprintf("$%.2f", s.TotalMonthlyCost)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	drawSection("Projection", projectionText(s.Projection))
	drawSection("Cost Components", lineItemText(report.Units))

	unitRows := make([][]string, 0, len(report.Units))
	for _, u := range report.Units {
		name := u.UnitName
		if u.IsDefaultUnit {
			name += " *"
		}
		unitRows = append(unitRows, []string{
			name,
			u.Environment,
			fmt.Sprintf("%.0f", u.TotalEventsPerDay),
			fmt.Sprintf("%d", u.StorageGB),
			fmt.Sprintf("%d / %d", u.ThroughputUnits, u.ComputeInstances),
			u.EstimationTier.String(),
			fmt.Sprintf("$%.2f", u.MonthlyCost),
		})
	}
	sectionTitle("Accounts")
	drawTable(
		[]float64{50, 28, 26, 20, 22, 20, 24},
		[]string{"Account", "Environment", "Events/day", "GB", "Shards/Tasks", "Tier", "Monthly"},
		unitRows,
	)

	rollupRows := make([][]string, 0, len(report.RollupKeys))
	for _, k := range report.RollupKeys {
		g := report.Rollup[k]
		rollupRows = append(rollupRows, []string{
			g.GroupKey,
			fmt.Sprintf("%d", g.UnitCount),
			fmt.Sprintf("%.0f", g.TotalEventsPerDay),
			fmt.Sprintf("$%.2f", g.ProductionCost),
			fmt.Sprintf("$%.2f", g.NonProductionCost),
			fmt.Sprintf("$%.2f", g.TotalMonthlyCost),
			fmt.Sprintf("%.2f%%", g.PercentOfTotal),
		})
	}
	sectionTitle(fmt.Sprintf("Cost by %s", strings.ReplaceAll(report.GroupBy, "_", " ")))
	drawTable(
		[]float64{50, 18, 26, 26, 26, 24, 20},
		[]string{"Group", "Accounts", "Events/day", "Prod", "Non-prod", "Monthly", "Share"},
		rollupRows,
	)

	drawSection("Estimation Quality", qualityText(s))

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func projectionText(projection map[int]float64) string {
	months := make([]int, 0, len(projection))
	for m := range projection {
		months = append(months, m)
	}
	sort.Ints(months)

	lines := make([]string, 0, len(months))
	for _, m := range months {
		lines = append(lines, fmt.Sprintf("%2d month(s): $%.2f", m, projection[m]))
	}
	return strings.Join(lines, "\n")
}

func lineItemText(rows []entity.UnitReport) string {
	var streaming, storage, compute, secrets, networking, egress, dspm, snapshot float64
	for _, r := range rows {
		streaming += r.EventStreamingCost
		storage += r.StorageCost
		compute += r.ComputeCost
		secrets += r.SecretsStoreCost
		networking += r.NetworkingCost
		egress += r.DataEgressCost
		dspm += r.DSPMCost
		snapshot += r.SnapshotCost
	}
	text := fmt.Sprintf("Event streaming: $%.2f\nStorage: $%.2f\nCompute: $%.2f\nSecrets store: $%.2f\nNetworking: $%.2f",
		streaming, storage, compute, secrets, networking)

	// linhas opcionais só aparecem quando habilitadas
	for _, extra := range []struct {
		label string
		cost  float64
	}{
		{"Data egress", egress},
		{"DSPM", dspm},
		{"Snapshot scanning", snapshot},
	} {
		if extra.cost > 0 {
			text += fmt.Sprintf("\n%s: $%.2f", extra.label, extra.cost)
		}
	}
	return text
}

func qualityText(s entity.RunSummary) string {
	if !s.Degraded() {
		return "All accounts estimated from measured data."
	}
	var lines []string
	if s.ReducedMode {
		lines = append(lines, "Reduced mode: only the caller account was estimated.")
	}
	if s.DegradedUnits > 0 {
		lines = append(lines, fmt.Sprintf("%d of %d accounts used fallback estimation (lowest tier: %s).", s.DegradedUnits, s.UnitCount, s.LowestTier))
	}
	if s.IncompleteUnits > 0 {
		lines = append(lines, fmt.Sprintf("%d accounts have incomplete event data.", s.IncompleteUnits))
	}
	if len(s.FallbackPriceDimensions) > 0 {
		dims := make([]string, 0, len(s.FallbackPriceDimensions))
		for _, d := range s.FallbackPriceDimensions {
			dims = append(dims, string(d))
		}
		lines = append(lines, "Static prices used for: "+strings.Join(dims, ", ")+".")
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
