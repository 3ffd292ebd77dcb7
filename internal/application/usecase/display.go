package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/costing"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/rollup"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// maxUnitRows limita a tabela de contas no terminal; os arquivos trazem todas.
const maxUnitRows = 10

// display renderiza o relatório no console.
func (uc *EstimateUseCase) display(report entity.Report, cfg types.Config) {
	uc.displayUnits(report)
	uc.displayRollup(report)
	if report.GroupBy != string(rollup.ByRegion) {
		uc.displayRollup(entity.Report{
			GroupBy:    string(rollup.ByRegion),
			Rollup:     rollup.Rollup(report.Units, rollup.ByRegion, Labels(cfg)),
			RollupKeys: nil,
		})
	}
	uc.displayLineItems(report)
	uc.displayProjection(report.Summary)
	uc.displayBudgets(report.Summary)
	uc.displayDegradation(report.Summary)
}

func (uc *EstimateUseCase) displayUnits(report entity.Report) {
	rows := report.Units
	title := "Per-account estimate"
	if len(rows) > maxUnitRows {
		rows = rollup.TopUnits(rows, maxUnitRows)
		title = fmt.Sprintf("Top %d of %d accounts by monthly cost", maxUnitRows, len(report.Units))
	}

	uc.console.Println(pterm.FgCyan.Sprint(title))
	table := uc.console.CreateTable()
	table.AddColumn("Account")
	table.AddColumn("Environment")
	table.AddColumn("Events/day")
	table.AddColumn("Peak EPS")
	table.AddColumn("Storage (GB)")
	table.AddColumn("Shards / Tasks")
	table.AddColumn("Tier")
	table.AddColumn("Monthly")

	for _, r := range rows {
		account := pterm.FgMagenta.Sprintf("%s\n%s", r.UnitName, r.UnitID)
		if r.IsDefaultUnit {
			account += pterm.FgYellow.Sprint(" *")
		}
		env := r.Environment
		if r.IsProduction {
			env = pterm.FgRed.Sprint(env)
		}
		table.AddRow(
			account,
			env,
			fmt.Sprintf("%.0f", r.TotalEventsPerDay),
			fmt.Sprintf("%d", r.EventsPerSecondPeak),
			fmt.Sprintf("%d", r.StorageGB),
			fmt.Sprintf("%d / %d", r.ThroughputUnits, r.ComputeInstances),
			tierText(r.EstimationTier, r.DataComplete),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%.2f", r.MonthlyCost),
		)
	}
	uc.console.Print(table.Render())
}

func (uc *EstimateUseCase) displayRollup(report entity.Report) {
	keys := report.RollupKeys
	if keys == nil {
		keys = rollup.SortedKeys(report.Rollup)
	}
	if len(keys) == 0 {
		return
	}

	uc.console.Println(pterm.FgCyan.Sprintf("Cost by %s", strings.ReplaceAll(report.GroupBy, "_", " ")))
	table := uc.console.CreateTable()
	table.AddColumn(report.GroupBy)
	table.AddColumn("Accounts")
	table.AddColumn("Resources")
	table.AddColumn("Events/day")
	table.AddColumn("Production")
	table.AddColumn("Non-production")
	table.AddColumn("Monthly")
	table.AddColumn("% of total")

	for _, k := range keys {
		g := report.Rollup[k]
		table.AddRow(
			pterm.FgMagenta.Sprint(g.GroupKey),
			fmt.Sprintf("%d", g.UnitCount),
			fmt.Sprintf("%d", g.ResourceCount),
			fmt.Sprintf("%.0f", g.TotalEventsPerDay),
			fmt.Sprintf("$%.2f", g.ProductionCost),
			fmt.Sprintf("$%.2f", g.NonProductionCost),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%.2f", g.TotalMonthlyCost),
			fmt.Sprintf("%.2f%%", g.PercentOfTotal),
		)
	}
	uc.console.Print(table.Render())
}

// displayLineItems soma cada componente de custo sobre todas as contas.
func (uc *EstimateUseCase) displayLineItems(report entity.Report) {
	totals := make(map[string][]float64, 8)
	for _, r := range report.Units {
		totals[entity.LineEventStreaming] = append(totals[entity.LineEventStreaming], r.EventStreamingCost)
		totals[entity.LineStorage] = append(totals[entity.LineStorage], r.StorageCost)
		totals[entity.LineCompute] = append(totals[entity.LineCompute], r.ComputeCost)
		totals[entity.LineSecretsStore] = append(totals[entity.LineSecretsStore], r.SecretsStoreCost)
		totals[entity.LineNetworking] = append(totals[entity.LineNetworking], r.NetworkingCost)
		totals[entity.LineDataEgress] = append(totals[entity.LineDataEgress], r.DataEgressCost)
		totals[entity.LineDSPM] = append(totals[entity.LineDSPM], r.DSPMCost)
		totals[entity.LineSnapshot] = append(totals[entity.LineSnapshot], r.SnapshotCost)
	}

	table := uc.console.CreateTable()
	table.AddColumn("Component")
	table.AddColumn("Monthly")
	for _, name := range entity.LineItemNames() {
		table.AddRow(strings.ReplaceAll(name, "_", " "), fmt.Sprintf("$%.2f", costing.SumRounded(totals[name]...)))
	}
	for _, name := range entity.OptionalLineNames() {
		if sum := costing.SumRounded(totals[name]...); sum > 0 {
			table.AddRow(strings.ReplaceAll(name, "_", " "), fmt.Sprintf("$%.2f", sum))
		}
	}
	table.AddRow(pterm.Bold.Sprint("total"), pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%.2f", report.Summary.TotalMonthlyCost))
	uc.console.Print(table.Render())
}

func (uc *EstimateUseCase) displayProjection(s entity.RunSummary) {
	months := make([]int, 0, len(s.Projection))
	for m := range s.Projection {
		months = append(months, m)
	}
	sort.Ints(months)

	points := make([]types.ProjectionPoint, 0, len(months))
	for _, m := range months {
		points = append(points, types.ProjectionPoint{Months: m, Cost: s.Projection[m]})
	}
	uc.console.DisplayProjectionBars(points)
}

func (uc *EstimateUseCase) displayBudgets(s entity.RunSummary) {
	for _, b := range s.Budgets {
		headroom := b.Headroom(s.TotalMonthlyCost)
		if headroom < 0 {
			uc.console.LogWarning("Budget '%s' ($%.2f) would be exceeded by $%.2f", b.Name, b.Limit, -headroom)
		} else {
			uc.console.LogInfo("Budget '%s' ($%.2f) headroom after estimate: $%.2f", b.Name, b.Limit, headroom)
		}
	}
}

func (uc *EstimateUseCase) displayDegradation(s entity.RunSummary) {
	if !s.Degraded() {
		uc.console.LogSuccess("All %d accounts estimated from measured data", s.UnitCount)
		return
	}
	if s.ReducedMode {
		uc.console.LogWarning("Reduced mode: only the caller account was estimated")
	}
	if s.DegradedUnits > 0 {
		uc.console.LogWarning("%d of %d accounts used fallback estimation (lowest tier: %s)", s.DegradedUnits, s.UnitCount, s.LowestTier)
	}
	if s.IncompleteUnits > 0 {
		uc.console.LogWarning("%d accounts have incomplete event data", s.IncompleteUnits)
	}
	if len(s.FallbackPriceDimensions) > 0 {
		dims := make([]string, 0, len(s.FallbackPriceDimensions))
		for _, d := range s.FallbackPriceDimensions {
			dims = append(dims, string(d))
		}
		uc.console.LogWarning("Static prices used for: %s", strings.Join(dims, ", "))
	}
}

func tierText(t entity.EstimationTier, complete bool) string {
	text := t.String()
	if !complete {
		text += " (partial)"
	}
	switch t {
	case entity.TierMeasured:
		return pterm.FgGreen.Sprint(text)
	case entity.TierDerived:
		return pterm.FgCyan.Sprint(text)
	case entity.TierHeuristic:
		return pterm.FgYellow.Sprint(text)
	default:
		return pterm.FgRed.Sprint(text)
	}
}
