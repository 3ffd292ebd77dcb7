// Package costing turns sizing requirements and a price table into an
// itemized monthly cost. Amounts use decimal arithmetic and each line is
// rounded to cents before it is summed, so displayed and aggregated totals
// always agree.
package costing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// HoursPerMonth é a convenção de faturamento da AWS (365*24/12).
const HoursPerMonth = 730

// Config holds the fixed, non-scaled parts of the deployment. The optional
// lines are off by default and, when off, do not appear in the estimate.
type Config struct {
	MonthlySecretOperations int64
	PrivateConnectionCount  int64
	NetworkingSurcharge     float64

	IncludeEgress   bool
	IncludeDSPM     bool
	IncludeSnapshot bool

	Egress   EgressRates
	DSPM     DSPMParams
	Snapshot SnapshotParams
}

// EgressRates são as tarifas de saída por GB, por prefixo de região.
type EgressRates struct {
	Default  float64
	ByPrefix map[string]float64
}

// Rate returns the per-GB rate of region; the longest matching prefix wins.
func (r EgressRates) Rate(region string) float64 {
	best, rate := "", r.Default
	for prefix, v := range r.ByPrefix {
		if strings.HasPrefix(region, prefix) && len(prefix) > len(best) {
			best, rate = prefix, v
		}
	}
	return rate
}

// DSPMParams describes one S3 data scan: a scanner instance and a NAT
// gateway up for HoursPerScan, plus NAT processing of every scanned GB.
type DSPMParams struct {
	ScansPerMonth  int64
	HoursPerScan   float64
	InstanceHourly float64
	NATHourly      float64
	NATPerGB       float64
}

// SnapshotParams descreve a varredura de snapshots EBS por instância Linux.
type SnapshotParams struct {
	ScansPerMonth        int64
	HoursPerScan         float64
	InstanceHourly       float64
	StorageGBPerInstance float64
	SnapshotGBMonthly    float64
	RetentionDays        float64
}

// DefaultConfig retorna a topologia padrão: 4 endpoints privados, 100K
// operações de segredo por mês e nenhuma sobretaxa.
func DefaultConfig() Config {
	return Config{
		MonthlySecretOperations: 100_000,
		PrivateConnectionCount:  4,
		NetworkingSurcharge:     0,
		Egress: EgressRates{
			Default:  0.09,
			ByPrefix: map[string]float64{"ap-": 0.11, "me-": 0.11, "sa-": 0.12},
		},
		DSPM: DSPMParams{
			ScansPerMonth:  1,
			HoursPerScan:   24,
			InstanceHourly: 0.34,
			NATHourly:      0.045,
			NATPerGB:       0.045,
		},
		Snapshot: SnapshotParams{
			ScansPerMonth:        4,
			HoursPerScan:         0.5,
			InstanceHourly:       0.085,
			StorageGBPerInstance: 100,
			SnapshotGBMonthly:    0.05,
			RetentionDays:        1,
		},
	}
}

// LineNames returns the line names an estimate built with c carries.
func (c Config) LineNames() []string {
	names := entity.LineItemNames()
	if c.IncludeEgress {
		names = append(names, entity.LineDataEgress)
	}
	if c.IncludeDSPM {
		names = append(names, entity.LineDSPM)
	}
	if c.IncludeSnapshot {
		names = append(names, entity.LineSnapshot)
	}
	return names
}

var hours = decimal.NewFromInt(HoursPerMonth)

// ComputeCost prices a sizing requirement. Units other than the default one
// host no infrastructure and get an all-zero estimate with the same shape.
func ComputeCost(sizing entity.SizingRequirement, prices entity.PriceTable, isProduction bool, cfg Config) entity.CostEstimate {
	if !sizing.IsDefaultUnit {
		return zeroEstimate(sizing.UnitID, cfg)
	}

	items := []entity.LineItem{
		line(entity.LineEventStreaming, decimal.NewFromInt(sizing.ThroughputUnits), decimal.NewFromFloat(prices.ThroughputUnitMonthly)),
		line(entity.LineStorage, decimal.NewFromInt(sizing.StorageGB), decimal.NewFromFloat(prices.StorageGBMonthly)),
		line(entity.LineCompute, decimal.NewFromInt(sizing.ComputeInstances), decimal.NewFromFloat(prices.ComputeInstanceMonthly)),
		line(entity.LineSecretsStore, secretBlocks(cfg.MonthlySecretOperations), decimal.NewFromFloat(prices.SecretsPer10K)),
		networkingLine(prices, isProduction, cfg),
	}
	if cfg.IncludeEgress {
		items = append(items, egressLine(sizing.Egress, cfg.Egress))
	}
	if cfg.IncludeDSPM {
		items = append(items, dspmLine(sizing.ScanBuckets, sizing.ScanDataGB, cfg.DSPM))
	}
	if cfg.IncludeSnapshot {
		items = append(items, snapshotLine(sizing.SnapshotInstances, cfg.Snapshot))
	}

	return finish(sizing.UnitID, items)
}

func line(name string, qty, unitPrice decimal.Decimal) entity.LineItem {
	return entity.LineItem{
		Name:        name,
		Quantity:    qty.InexactFloat64(),
		UnitPrice:   unitPrice.InexactFloat64(),
		MonthlyCost: qty.Mul(unitPrice).Round(2).InexactFloat64(),
	}
}

// secretBlocks = ceil(ops / 10000).
func secretBlocks(ops int64) decimal.Decimal {
	if ops <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(ops).Div(decimal.NewFromInt(10_000)).Ceil()
}

func networkingLine(prices entity.PriceTable, isProduction bool, cfg Config) entity.LineItem {
	count := decimal.NewFromInt(cfg.PrivateConnectionCount)
	if cfg.PrivateConnectionCount < 0 {
		count = decimal.Zero
	}
	endpoint := decimal.NewFromFloat(prices.PrivateConnectionHourly).Mul(hours)
	total := count.Mul(endpoint)

	if isProduction {
		total = total.Add(decimal.NewFromFloat(prices.GatewayHourly).Mul(hours))
	}
	total = total.Add(decimal.NewFromFloat(cfg.NetworkingSurcharge))

	return entity.LineItem{
		Name:        entity.LineNetworking,
		Quantity:    count.InexactFloat64(),
		UnitPrice:   endpoint.Round(4).InexactFloat64(),
		MonthlyCost: total.Round(2).InexactFloat64(),
	}
}

// egressLine prices each region at its own rate; the unit price shown is
// the blended rate.
func egressLine(volume entity.EgressVolume, rates EgressRates) entity.LineItem {
	gb, total := decimal.Zero, decimal.Zero
	for _, r := range volume {
		if r.GBPerMonth <= 0 {
			continue
		}
		v := decimal.NewFromFloat(r.GBPerMonth)
		gb = gb.Add(v)
		total = total.Add(v.Mul(decimal.NewFromFloat(rates.Rate(r.Region))))
	}
	return lineWithTotal(entity.LineDataEgress, gb.Round(2), total)
}

// dspmLine custa as varreduras de dados; sem buckets não há varredura.
func dspmLine(buckets int, dataGB float64, p DSPMParams) entity.LineItem {
	if buckets <= 0 || p.ScansPerMonth <= 0 {
		return entity.LineItem{Name: entity.LineDSPM}
	}
	scans := decimal.NewFromInt(p.ScansPerMonth)
	scanHours := decimal.NewFromFloat(p.HoursPerScan)

	hourly := decimal.NewFromFloat(p.InstanceHourly).Add(decimal.NewFromFloat(p.NATHourly))
	perScan := scanHours.Mul(hourly)
	if dataGB > 0 {
		perScan = perScan.Add(decimal.NewFromFloat(dataGB).Mul(decimal.NewFromFloat(p.NATPerGB)))
	}
	return lineWithTotal(entity.LineDSPM, decimal.NewFromInt(int64(buckets)), perScan.Mul(scans))
}

// snapshotLine custa as varreduras das instâncias Linux e a retenção dos
// snapshots temporários.
func snapshotLine(instances int, p SnapshotParams) entity.LineItem {
	if instances <= 0 {
		return entity.LineItem{Name: entity.LineSnapshot}
	}
	n := decimal.NewFromInt(int64(instances))

	compute := n.Mul(decimal.NewFromFloat(p.HoursPerScan)).
		Mul(decimal.NewFromFloat(p.InstanceHourly)).
		Mul(decimal.NewFromInt(p.ScansPerMonth))
	storage := n.Mul(decimal.NewFromFloat(p.StorageGBPerInstance)).
		Mul(decimal.NewFromFloat(p.SnapshotGBMonthly)).
		Mul(decimal.NewFromFloat(p.RetentionDays)).
		Div(decimal.NewFromInt(30))

	return lineWithTotal(entity.LineSnapshot, n, compute.Add(storage))
}

// lineWithTotal arredonda o total e mostra o preço unitário efetivo.
func lineWithTotal(name string, qty, total decimal.Decimal) entity.LineItem {
	unitPrice := decimal.Zero
	if qty.IsPositive() {
		unitPrice = total.Div(qty).Round(4)
	}
	return entity.LineItem{
		Name:        name,
		Quantity:    qty.InexactFloat64(),
		UnitPrice:   unitPrice.InexactFloat64(),
		MonthlyCost: total.Round(2).InexactFloat64(),
	}
}

func zeroEstimate(unitID string, cfg Config) entity.CostEstimate {
	names := cfg.LineNames()
	items := make([]entity.LineItem, 0, len(names))
	for _, name := range names {
		items = append(items, entity.LineItem{Name: name})
	}
	return finish(unitID, items)
}

func finish(unitID string, items []entity.LineItem) entity.CostEstimate {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(decimal.NewFromFloat(li.MonthlyCost))
	}
	total = total.Round(2)

	return entity.CostEstimate{
		UnitID:            unitID,
		LineItems:         items,
		TotalMonthlyCost:  total.InexactFloat64(),
		MonthlyProjection: Project(total.InexactFloat64()),
	}
}

// Project builds the linear forward projection (no discounting).
func Project(monthly float64) map[int]float64 {
	m := decimal.NewFromFloat(monthly)
	out := make(map[int]float64, len(entity.ProjectionMonths))
	for _, months := range entity.ProjectionMonths {
		out[months] = m.Mul(decimal.NewFromInt(int64(months))).Round(2).InexactFloat64()
	}
	return out
}

// SumRounded soma valores monetários com aritmética decimal.
func SumRounded(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}
