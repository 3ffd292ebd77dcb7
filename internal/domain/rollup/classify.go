package rollup

import (
	"sort"
	"strings"
)

// Category is one environment class with its match patterns. Lower Priority
// wins when a name matches several categories.
type Category struct {
	Name       string
	Priority   int
	Patterns   []string
	Production bool
}

// DefaultCategories vem antes de Production porque "preprod" contém "prod".
func DefaultCategories() []Category {
	return []Category{
		{Name: "PreProduction", Priority: 1, Patterns: []string{"preprod", "pre-prod", "staging", "stage", "stg", "uat"}},
		{Name: "Production", Priority: 2, Patterns: []string{"prod", "prd", "production", "live"}, Production: true},
		{Name: "Development", Priority: 3, Patterns: []string{"dev", "develop"}},
		{Name: "Test", Priority: 4, Patterns: []string{"test", "qa", "qas"}},
		{Name: "Sandbox", Priority: 5, Patterns: []string{"sandbox", "sbx", "poc", "lab"}},
		{Name: "Shared", Priority: 6, Patterns: []string{"shared", "security", "log-archive", "audit", "network", "management"}, Production: true},
	}
}

// DefaultBusinessUnitTagKeys são as chaves reconhecidas para unidade de negócio.
func DefaultBusinessUnitTagKeys() []string {
	return []string{"BusinessUnit", "Business-Unit", "BU", "business_unit"}
}

// DefaultEnvironmentTagKeys são as chaves reconhecidas para ambiente.
func DefaultEnvironmentTagKeys() []string {
	return []string{"Environment", "Env", "environment", "env"}
}

// Classifier assigns environment and business-unit labels to units.
type Classifier struct {
	categories []Category
	buKeys     []string
	envKeys    []string
	labels     Defaults
}

// NewClassifier cria um classificador; categorias são ordenadas por prioridade.
func NewClassifier(categories []Category, buKeys, envKeys []string, labels Defaults) *Classifier {
	sorted := make([]Category, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	return &Classifier{categories: sorted, buKeys: buKeys, envKeys: envKeys, labels: labels}
}

// Classify returns the environment class for a unit and whether it counts
// as production. Name substrings are tried first, then tag values.
func (c *Classifier) Classify(name string, tags map[string]string) (string, bool) {
	if cat, ok := c.match(name); ok {
		return cat.Name, cat.Production
	}
	for _, key := range c.envKeys {
		v, ok := lookupTag(tags, key)
		if !ok {
			continue
		}
		if cat, ok := c.match(v); ok {
			return cat.Name, cat.Production
		}
	}
	return c.labels.Environment, false
}

// BusinessUnit retorna o valor da primeira chave de BU presente nas tags.
func (c *Classifier) BusinessUnit(tags map[string]string) string {
	for _, key := range c.buKeys {
		if v, ok := lookupTag(tags, key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return c.labels.BusinessUnit
}

func (c *Classifier) match(value string) (Category, bool) {
	v := strings.ToLower(value)
	if v == "" {
		return Category{}, false
	}
	for _, cat := range c.categories {
		for _, p := range cat.Patterns {
			if p != "" && strings.Contains(v, strings.ToLower(p)) {
				return cat, true
			}
		}
	}
	return Category{}, false
}

// lookupTag faz a busca sem diferenciar maiúsculas na chave.
func lookupTag(tags map[string]string, key string) (string, bool) {
	if v, ok := tags[key]; ok {
		return v, true
	}
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
