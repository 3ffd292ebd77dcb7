package entity

// BudgetInfo represents an existing AWS budget of the default unit.
type BudgetInfo struct {
	Name     string  `json:"name"`
	Limit    float64 `json:"limit"`
	Actual   float64 `json:"actual"`
	Forecast float64 `json:"forecast,omitempty"`
}

// Headroom é quanto sobra no orçamento depois de somar o custo projetado
// ao gasto previsto (ou atual, quando não há previsão). Negativo = estouro.
func (b BudgetInfo) Headroom(projectedMonthly float64) float64 {
	spend := b.Forecast
	if spend == 0 {
		spend = b.Actual
	}
	return b.Limit - spend - projectedMonthly
}
