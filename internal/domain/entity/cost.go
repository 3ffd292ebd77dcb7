package entity

// Nomes das linhas de custo, na ordem em que aparecem nos relatórios.
const (
	LineEventStreaming = "event_streaming"
	LineStorage        = "storage"
	LineCompute        = "compute"
	LineSecretsStore   = "secrets_store"
	LineNetworking     = "networking"

	// Linhas opcionais, incluídas só quando habilitadas na configuração.
	LineDataEgress = "data_egress"
	LineDSPM       = "dspm"
	LineSnapshot   = "snapshot"
)

// LineItemNames returns the always-present cost line names in report order.
func LineItemNames() []string {
	return []string{LineEventStreaming, LineStorage, LineCompute, LineSecretsStore, LineNetworking}
}

// OptionalLineNames são as linhas extras, na ordem em que seguem as fixas.
func OptionalLineNames() []string {
	return []string{LineDataEgress, LineDSPM, LineSnapshot}
}

// ProjectionMonths são os horizontes da projeção linear.
var ProjectionMonths = []int{1, 3, 6, 12}

// LineItem is one named cost component of an estimate.
type LineItem struct {
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	MonthlyCost float64 `json:"monthly_cost"`
}

// CostEstimate is the itemized monthly cost of a unit.
type CostEstimate struct {
	UnitID            string          `json:"unit_id"`
	LineItems         []LineItem      `json:"line_items"`
	TotalMonthlyCost  float64         `json:"total_monthly_cost"`
	MonthlyProjection map[int]float64 `json:"monthly_projection"`
}

// Line retorna a linha pelo nome, ou uma linha zerada se não existir.
func (c CostEstimate) Line(name string) LineItem {
	for _, li := range c.LineItems {
		if li.Name == name {
			return li
		}
	}
	return LineItem{Name: name}
}
