package sizing

import (
	"errors"
	"fmt"
)

// Config holds the tunables of the sizing model. It is built once per run
// and passed by value.
type Config struct {
	PeakMultiplier             float64
	RetentionDays              int
	DefaultEventSizeKB         float64
	MinThroughputUnits         int64
	MaxThroughputUnits         int64
	MinComputeInstances        int64
	MaxComputeInstances        int64
	EventsPerInstancePerSecond float64
}

// Perfis de dimensionamento conhecidos.
const (
	ProfileStandard   = "standard"
	ProfileEnterprise = "enterprise"
)

// ErrInvalidConfig é devolvido por Validate.
var ErrInvalidConfig = errors.New("invalid sizing config")

// DefaultConfig returns the standard profile.
func DefaultConfig() Config {
	cfg, _ := ProfileConfig(ProfileStandard)
	return cfg
}

// ProfileConfig retorna os limites de um perfil nomeado.
func ProfileConfig(profile string) (Config, error) {
	base := Config{
		PeakMultiplier:     3,
		RetentionDays:      30,
		DefaultEventSizeKB: 1.5,
	}
	switch profile {
	case "", ProfileStandard:
		base.MinThroughputUnits, base.MaxThroughputUnits = 2, 10
		base.MinComputeInstances, base.MaxComputeInstances = 1, 4
		base.EventsPerInstancePerSecond = 50
	case ProfileEnterprise:
		base.MinThroughputUnits, base.MaxThroughputUnits = 1, 20
		base.MinComputeInstances, base.MaxComputeInstances = 1, 10
		base.EventsPerInstancePerSecond = 5000
	default:
		return Config{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, profile)
	}
	return base, nil
}

// Validate checks bounds and multipliers.
func (c Config) Validate() error {
	switch {
	case c.PeakMultiplier <= 0:
		return fmt.Errorf("%w: peak multiplier must be positive", ErrInvalidConfig)
	case c.RetentionDays < 0:
		return fmt.Errorf("%w: retention days must not be negative", ErrInvalidConfig)
	case c.DefaultEventSizeKB <= 0:
		return fmt.Errorf("%w: default event size must be positive", ErrInvalidConfig)
	case c.MinThroughputUnits < 0 || c.MinThroughputUnits > c.MaxThroughputUnits:
		return fmt.Errorf("%w: throughput units range [%d,%d]", ErrInvalidConfig, c.MinThroughputUnits, c.MaxThroughputUnits)
	case c.MinComputeInstances < 0 || c.MinComputeInstances > c.MaxComputeInstances:
		return fmt.Errorf("%w: compute instances range [%d,%d]", ErrInvalidConfig, c.MinComputeInstances, c.MaxComputeInstances)
	case c.EventsPerInstancePerSecond < 0:
		return fmt.Errorf("%w: events per instance must not be negative", ErrInvalidConfig)
	}
	return nil
}
