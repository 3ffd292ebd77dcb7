package entity

import (
	"errors"
	"fmt"
)

// Unit representa uma conta AWS (subscription-equivalent) que será estimada.
type Unit struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Region string            `json:"region"`
	Tags   map[string]string `json:"tags,omitempty"`

	// Regions lista as regiões analisadas; vazio significa apenas Region.
	Regions []string `json:"regions,omitempty"`

	// IsDefault marca a conta que hospeda a infraestrutura central.
	IsDefault bool `json:"is_default"`
}

// ErrNoDefaultUnit e ErrMultipleDefaultUnits sinalizam violações da regra
// "exatamente uma unidade default por lote".
var (
	ErrNoDefaultUnit        = errors.New("no default unit in batch")
	ErrMultipleDefaultUnits = errors.New("more than one default unit in batch")
)

// ValidateBatch checks that exactly one unit is flagged as default.
func ValidateBatch(units []Unit) error {
	count := 0
	for _, u := range units {
		if u.IsDefault {
			count++
		}
	}
	switch {
	case count == 0:
		return ErrNoDefaultUnit
	case count > 1:
		return fmt.Errorf("%w: found %d", ErrMultipleDefaultUnits, count)
	}
	return nil
}

// MarkDefault devolve uma cópia das unidades com apenas defaultID marcado.
// Quando defaultID não existe no lote, a primeira unidade vira a default.
func MarkDefault(units []Unit, defaultID string) []Unit {
	out := make([]Unit, len(units))
	copy(out, units)

	found := false
	for i := range out {
		out[i].IsDefault = defaultID != "" && out[i].ID == defaultID && !found
		if out[i].IsDefault {
			found = true
		}
	}
	if !found && len(out) > 0 {
		out[0].IsDefault = true
	}
	return out
}

// CallerIdentity é a identidade resolvida pelo STS para a sessão ativa.
type CallerIdentity struct {
	AccountID string `json:"account_id"`
	ARN       string `json:"arn"`
	Profile   string `json:"profile,omitempty"`
}
