package entity

import (
	"errors"
	"fmt"
	"math"
)

// EstimationTier is one rung of the usage fallback ladder, from the most
// accurate (measured) to the least (default).
type EstimationTier int

const (
	TierMeasured EstimationTier = iota + 1
	TierDerived
	TierHeuristic
	TierDefault
)

func (t EstimationTier) String() string {
	switch t {
	case TierMeasured:
		return "measured"
	case TierDerived:
		return "derived"
	case TierHeuristic:
		return "heuristic"
	case TierDefault:
		return "default"
	}
	return "unknown"
}

// ParseEstimationTier é o inverso de String, usado pelo leitor de CSV.
func ParseEstimationTier(s string) (EstimationTier, error) {
	for t := TierMeasured; t <= TierDefault; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown estimation tier %q", s)
}

// Worse retorna o tier menos preciso entre os dois.
func (t EstimationTier) Worse(other EstimationTier) EstimationTier {
	if other > t {
		return other
	}
	return t
}

// UsageSample carries the raw usage signals collected for a single unit.
type UsageSample struct {
	UnitID           string `json:"unit_id"`
	UnitName         string `json:"unit_name"`
	Region           string `json:"region"`
	BusinessUnit     string `json:"business_unit"`
	EnvironmentClass string `json:"environment"`
	IsProductionLike bool   `json:"is_production"`
	IsDefaultUnit    bool   `json:"is_default_unit"`

	PrimaryEventCountPerDay   float64 `json:"primary_events_per_day"`
	AverageEventSizeKB        float64 `json:"average_event_size_kb"`
	DirectoryEventCountPerDay float64 `json:"directory_events_per_day"`
	ResourceCount             int     `json:"resource_count"`

	// Regions são as regiões efetivamente coletadas.
	Regions    []string       `json:"regions,omitempty"`
	Egress     EgressVolume   `json:"egress,omitempty"`
	EgressTier EstimationTier `json:"egress_tier,omitempty"`

	// Inventário das varreduras opcionais (DSPM e snapshot).
	ScanBuckets       int     `json:"scan_buckets,omitempty"`
	ScanDataGB        float64 `json:"scan_data_gb,omitempty"`
	SnapshotInstances int     `json:"snapshot_instances,omitempty"`

	EventTier     EstimationTier `json:"event_tier"`
	SizeTier      EstimationTier `json:"size_tier"`
	DirectoryTier EstimationTier `json:"directory_tier,omitempty"`

	// DataComplete é false quando o paginador atingiu o limite no chunk mínimo.
	DataComplete bool     `json:"data_complete"`
	Warnings     []string `json:"warnings,omitempty"`
}

// ErrInvalidUsage é devolvido pelo construtor para amostras inconsistentes.
var ErrInvalidUsage = errors.New("invalid usage sample")

// NewUsageSample validates a sample built by the aggregator. Negative counts
// are rejected rather than clamped so that bugs upstream surface early.
func NewUsageSample(s UsageSample) (UsageSample, error) {
	if s.UnitID == "" || s.UnitName == "" {
		return UsageSample{}, fmt.Errorf("%w: unit id and name are required", ErrInvalidUsage)
	}
	if s.Region == "" {
		return UsageSample{}, fmt.Errorf("%w: region is required for unit %s", ErrInvalidUsage, s.UnitID)
	}
	for name, v := range map[string]float64{
		"primary_events_per_day":   s.PrimaryEventCountPerDay,
		"directory_events_per_day": s.DirectoryEventCountPerDay,
		"average_event_size_kb":    s.AverageEventSizeKB,
		"scan_data_gb":             s.ScanDataGB,
		"egress_gb_month":          s.Egress.TotalGB(),
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return UsageSample{}, fmt.Errorf("%w: %s=%v for unit %s", ErrInvalidUsage, name, v, s.UnitID)
		}
	}
	for name, v := range map[string]int{
		"resource_count":     s.ResourceCount,
		"scan_buckets":       s.ScanBuckets,
		"snapshot_instances": s.SnapshotInstances,
	} {
		if v < 0 {
			return UsageSample{}, fmt.Errorf("%w: %s=%d for unit %s", ErrInvalidUsage, name, v, s.UnitID)
		}
	}
	for _, e := range s.Egress {
		if e.GBPerMonth < 0 || math.IsNaN(e.GBPerMonth) || math.IsInf(e.GBPerMonth, 0) {
			return UsageSample{}, fmt.Errorf("%w: egress %v GB in %s for unit %s", ErrInvalidUsage, e.GBPerMonth, e.Region, s.UnitID)
		}
	}
	if !s.IsDefaultUnit && s.DirectoryEventCountPerDay != 0 {
		return UsageSample{}, fmt.Errorf("%w: directory volume on non-default unit %s", ErrInvalidUsage, s.UnitID)
	}
	return s, nil
}

// LowestTier retorna o pior tier usado nos sinais da amostra.
func (s UsageSample) LowestTier() EstimationTier {
	t := s.EventTier.Worse(s.SizeTier)
	if s.IsDefaultUnit {
		t = t.Worse(s.DirectoryTier)
	}
	return t
}

// Degraded reports whether any signal fell below direct measurement.
func (s UsageSample) Degraded() bool {
	return s.LowestTier() > TierMeasured || !s.DataComplete
}

// RegionalEgress é o volume mensal que sai de uma região para a plataforma.
type RegionalEgress struct {
	Region     string  `json:"region"`
	GBPerMonth float64 `json:"gb_per_month"`
}

// EgressVolume is the outbound data volume of a unit, one entry per region.
type EgressVolume []RegionalEgress

// TotalGB soma o volume de todas as regiões.
func (e EgressVolume) TotalGB() float64 {
	var total float64
	for _, r := range e {
		total += r.GBPerMonth
	}
	return total
}

// Merge adds other into a copy of e, keeping first-seen region order.
func (e EgressVolume) Merge(other EgressVolume) EgressVolume {
	out := append(EgressVolume(nil), e...)
	for _, r := range other {
		found := false
		for i := range out {
			if out[i].Region == r.Region {
				out[i].GBPerMonth += r.GBPerMonth
				found = true
				break
			}
		}
		if !found {
			out = append(out, r)
		}
	}
	return out
}

// InstanceInventory conta as instâncias cobertas pela varredura de snapshots.
type InstanceInventory struct {
	Total int `json:"total"`
	Linux int `json:"linux"`
}

// EventRecord is a single event log record returned by a usage provider.
type EventRecord struct {
	Timestamp int64  `json:"timestamp"`
	Category  string `json:"category"`
	Message   string `json:"message"`
}

// EventPage is one page of a paged event-log query.
type EventPage struct {
	Records   []EventRecord
	NextToken string
}

// DerivedSignal é um sinal relacionado e mais barato de consultar.
// EventRatio converte CountPerDay em eventos; 0 significa "use o padrão configurado".
type DerivedSignal struct {
	Source      string  `json:"source"`
	CountPerDay float64 `json:"count_per_day"`
	EventRatio  float64 `json:"event_ratio"`
}
