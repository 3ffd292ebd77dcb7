package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// requiredUnitColumns são as colunas que ReadCSV exige.
var requiredUnitColumns = []string{
	"unit_id", "unit_name", "business_unit", "environment", "region",
	"is_production", "is_default_unit", "resource_count",
	"total_events_per_day", "events_per_second_peak", "storage_gb",
	"throughput_units", "compute_instances",
	"event_streaming_cost", "storage_cost", "compute_cost",
	"secrets_store_cost", "networking_cost", "monthly_cost",
	"estimation_tier", "data_complete",
}

// unitColumns é a ordem das colunas do CSV por conta. As colunas opcionais
// ficam no fim e podem faltar em arquivos antigos.
var unitColumns = append(append([]string(nil), requiredUnitColumns...),
	"regions", "egress_gb_month", "data_egress_cost", "dspm_cost", "snapshot_cost",
)

const regionSeparator = ";"

var rollupColumns = []string{
	"group_by", "group_key", "unit_count", "resource_count",
	"total_events_per_day", "storage_gb", "production_cost",
	"non_production_cost", "total_monthly_cost", "percent_of_total",
}

// --- Exportação CSV ---

func (r *ExportRepositoryImpl) ExportToCSV(report entity.Report, filename, outputDir string) (string, error) {
	if err := validateRows(report.Units); err != nil {
		return "", err
	}

	records := make([][]string, 0, len(report.Units)+1)
	records = append(records, unitColumns)
	for _, row := range report.Units {
		records = append(records, unitRecord(row))
	}
	return r.writeCSV(records, filename, outputDir)
}

func (r *ExportRepositoryImpl) ExportRollupToCSV(report entity.Report, filename, outputDir string) (string, error) {
	keys := report.RollupKeys
	if len(keys) != len(report.Rollup) {
		return "", fmt.Errorf("rollup order has %d keys for %d groups", len(keys), len(report.Rollup))
	}

	records := make([][]string, 0, len(keys)+1)
	records = append(records, rollupColumns)
	for _, k := range keys {
		g, ok := report.Rollup[k]
		if !ok {
			return "", fmt.Errorf("rollup group %q missing", k)
		}
		records = append(records, []string{
			report.GroupBy,
			g.GroupKey,
			strconv.Itoa(g.UnitCount),
			strconv.Itoa(g.ResourceCount),
			formatFloat(g.TotalEventsPerDay),
			strconv.FormatInt(g.StorageGB, 10),
			formatFloat(g.ProductionCost),
			formatFloat(g.NonProductionCost),
			formatFloat(g.TotalMonthlyCost),
			formatFloat(g.PercentOfTotal),
		})
	}
	return r.writeCSV(records, filename+"_rollup", outputDir)
}

func (r *ExportRepositoryImpl) writeCSV(records [][]string, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}

	return writeRecords(file, records, outputFilename)
}

// writeRecords grava e fecha w; um erro no Close também é falha de escrita.
func writeRecords(w io.WriteCloser, records [][]string, outputFilename string) (path string, err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			path, err = "", fmt.Errorf("error closing CSV file: %w", cerr)
		}
	}()

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func unitRecord(row entity.UnitReport) []string {
	return []string{
		row.UnitID,
		row.UnitName,
		row.BusinessUnit,
		row.Environment,
		row.Region,
		strconv.FormatBool(row.IsProduction),
		strconv.FormatBool(row.IsDefaultUnit),
		strconv.Itoa(row.ResourceCount),
		formatFloat(row.TotalEventsPerDay),
		strconv.FormatInt(row.EventsPerSecondPeak, 10),
		strconv.FormatInt(row.StorageGB, 10),
		strconv.FormatInt(row.ThroughputUnits, 10),
		strconv.FormatInt(row.ComputeInstances, 10),
		formatFloat(row.EventStreamingCost),
		formatFloat(row.StorageCost),
		formatFloat(row.ComputeCost),
		formatFloat(row.SecretsStoreCost),
		formatFloat(row.NetworkingCost),
		formatFloat(row.MonthlyCost),
		row.EstimationTier.String(),
		strconv.FormatBool(row.DataComplete),
		strings.Join(row.Regions, regionSeparator),
		formatFloat(row.EgressGBPerMonth),
		formatFloat(row.DataEgressCost),
		formatFloat(row.DSPMCost),
		formatFloat(row.SnapshotCost),
	}
}

// formatFloat usa a menor representação que relê o mesmo valor.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// --- Leitura CSV ---

// ReadCSV reads back a file written by ExportToCSV. Columns are matched by
// header name, so extra columns are ignored. A missing required column is an
// error; the optional cost columns read as zero.
func (r *ExportRepositoryImpl) ReadCSV(path string) ([]entity.UnitReport, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file: %s", path)
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}
	for _, col := range requiredUnitColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV file %s is missing column %q", path, col)
		}
	}

	rows := make([]entity.UnitReport, 0, len(records)-1)
	for line, rec := range records[1:] {
		row, err := parseUnitRecord(rec, index)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line+2, err)
		}
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseUnitRecord(rec []string, index map[string]int) (entity.UnitReport, error) {
	p := fieldParser{rec: rec, index: index}
	row := entity.UnitReport{
		UnitID:              p.text("unit_id"),
		UnitName:            p.text("unit_name"),
		BusinessUnit:        p.text("business_unit"),
		Environment:         p.text("environment"),
		Region:              p.text("region"),
		IsProduction:        p.flag("is_production"),
		IsDefaultUnit:       p.flag("is_default_unit"),
		ResourceCount:       int(p.integer("resource_count")),
		TotalEventsPerDay:   p.number("total_events_per_day"),
		EventsPerSecondPeak: p.integer("events_per_second_peak"),
		StorageGB:           p.integer("storage_gb"),
		ThroughputUnits:     p.integer("throughput_units"),
		ComputeInstances:    p.integer("compute_instances"),
		EventStreamingCost:  p.number("event_streaming_cost"),
		StorageCost:         p.number("storage_cost"),
		ComputeCost:         p.number("compute_cost"),
		SecretsStoreCost:    p.number("secrets_store_cost"),
		NetworkingCost:      p.number("networking_cost"),
		MonthlyCost:         p.number("monthly_cost"),
		DataComplete:        p.flag("data_complete"),
	}
	if p.has("regions") {
		if v := p.text("regions"); v != "" {
			row.Regions = strings.Split(v, regionSeparator)
		}
	}
	row.EgressGBPerMonth = p.optionalNumber("egress_gb_month")
	row.DataEgressCost = p.optionalNumber("data_egress_cost")
	row.DSPMCost = p.optionalNumber("dspm_cost")
	row.SnapshotCost = p.optionalNumber("snapshot_cost")
	if p.err != nil {
		return entity.UnitReport{}, p.err
	}
	tier, err := entity.ParseEstimationTier(p.text("estimation_tier"))
	if err != nil {
		return entity.UnitReport{}, err
	}
	row.EstimationTier = tier
	return row, nil
}

// fieldParser guarda o primeiro erro de conversão da linha.
type fieldParser struct {
	rec   []string
	index map[string]int
	err   error
}

func (p *fieldParser) text(col string) string {
	i := p.index[col]
	if i >= len(p.rec) {
		if p.err == nil {
			p.err = fmt.Errorf("missing value for %s", col)
		}
		return ""
	}
	return p.rec[i]
}

func (p *fieldParser) has(col string) bool {
	_, ok := p.index[col]
	return ok
}

// optionalNumber vale zero quando a coluna não existe no arquivo.
func (p *fieldParser) optionalNumber(col string) float64 {
	if !p.has(col) {
		return 0
	}
	return p.number(col)
}

func (p *fieldParser) number(col string) float64 {
	v, err := strconv.ParseFloat(p.text(col), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (p *fieldParser) integer(col string) int64 {
	v, err := strconv.ParseInt(p.text(col), 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (p *fieldParser) flag(col string) bool {
	v, err := strconv.ParseBool(p.text(col))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}
