// Package rollup groups per-unit estimates by an organizational dimension
// and classifies units into environments and business units.
package rollup

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// Dimension é a chave de agrupamento do rollup.
type Dimension string

const (
	ByBusinessUnit Dimension = "business_unit"
	ByEnvironment  Dimension = "environment"
	ByRegion       Dimension = "region"
)

// ParseDimension valida o valor vindo da CLI ou do arquivo de configuração.
func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case ByBusinessUnit, ByEnvironment, ByRegion:
		return Dimension(s), nil
	case "":
		return ByBusinessUnit, nil
	}
	return "", fmt.Errorf("unknown rollup dimension %q (use business_unit, environment or region)", s)
}

// Defaults holds the labels used for rows without a value in the dimension.
type Defaults struct {
	BusinessUnit string
	Environment  string
}

// DefaultLabels retorna "Unassigned"/"Unclassified".
func DefaultLabels() Defaults {
	return Defaults{BusinessUnit: "Unassigned", Environment: "Unclassified"}
}

// Rollup groups rows by dim. Percentages are computed only after every row
// has been summed, and a zero grand total yields zero percentages.
func Rollup(rows []entity.UnitReport, dim Dimension, labels Defaults) map[string]entity.RollupSummary {
	type acc struct {
		summary    entity.RollupSummary
		total      decimal.Decimal
		production decimal.Decimal
		other      decimal.Decimal
	}

	groups := make(map[string]*acc)
	grand := decimal.Zero

	for _, r := range rows {
		key := groupKey(r, dim, labels)
		g, ok := groups[key]
		if !ok {
			g = &acc{summary: entity.RollupSummary{GroupKey: key}}
			groups[key] = g
		}

		cost := decimal.NewFromFloat(r.MonthlyCost)
		g.summary.UnitCount++
		g.summary.ResourceCount += r.ResourceCount
		g.summary.TotalEventsPerDay += r.TotalEventsPerDay
		g.summary.StorageGB += r.StorageGB
		g.total = g.total.Add(cost)
		if r.IsProduction {
			g.production = g.production.Add(cost)
		} else {
			g.other = g.other.Add(cost)
		}
		grand = grand.Add(cost)
	}

	out := make(map[string]entity.RollupSummary, len(groups))
	for key, g := range groups {
		s := g.summary
		s.TotalMonthlyCost = g.total.Round(2).InexactFloat64()
		s.ProductionCost = g.production.Round(2).InexactFloat64()
		s.NonProductionCost = g.other.Round(2).InexactFloat64()
		if grand.IsPositive() {
			s.PercentOfTotal = g.total.Div(grand).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
		}
		out[key] = s
	}
	return out
}

func groupKey(r entity.UnitReport, dim Dimension, labels Defaults) string {
	switch dim {
	case ByEnvironment:
		return orDefault(r.Environment, labels.Environment)
	case ByRegion:
		return orDefault(r.Region, "unknown")
	default:
		return orDefault(r.BusinessUnit, labels.BusinessUnit)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// SortedKeys ordena os grupos por custo decrescente, com desempate pelo nome.
func SortedKeys(groups map[string]entity.RollupSummary) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := groups[keys[i]], groups[keys[j]]
		if math.Abs(a.TotalMonthlyCost-b.TotalMonthlyCost) > 0.005 {
			return a.TotalMonthlyCost > b.TotalMonthlyCost
		}
		return keys[i] < keys[j]
	})
	return keys
}

// TopUnits returns the n most expensive rows, most expensive first.
func TopUnits(rows []entity.UnitReport, n int) []entity.UnitReport {
	sorted := make([]entity.UnitReport, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MonthlyCost > sorted[j].MonthlyCost
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
