package usecase

import (
	"fmt"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/costing"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/rollup"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/sizing"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// LoadConfig monta a configuração efetiva: padrões, arquivo e, por fim, flags.
func (uc *EstimateUseCase) LoadConfig(args *types.CLIArgs) (types.Config, error) {
	cfg := types.DefaultConfig()
	if args == nil {
		return cfg, cfg.Validate()
	}

	if args.ConfigFile != "" {
		if uc.configRepo == nil {
			return cfg, fmt.Errorf("config file given but no config loader is configured")
		}
		loaded, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	args.ApplyTo(&cfg)
	return cfg, cfg.Validate()
}

// SizingConfig starts from the named profile and applies explicit overrides.
func SizingConfig(c types.Config) (sizing.Config, error) {
	sc, err := sizing.ProfileConfig(c.SizingProfile)
	if err != nil {
		return sc, err
	}
	if c.PeakMultiplier > 0 {
		sc.PeakMultiplier = c.PeakMultiplier
	}
	if c.RetentionDays > 0 {
		sc.RetentionDays = c.RetentionDays
	}
	if c.DefaultEventSizeKB > 0 {
		sc.DefaultEventSizeKB = c.DefaultEventSizeKB
	}
	if c.MinThroughputUnits > 0 {
		sc.MinThroughputUnits = c.MinThroughputUnits
	}
	if c.MaxThroughputUnits > 0 {
		sc.MaxThroughputUnits = c.MaxThroughputUnits
	}
	if c.MinComputeInstances > 0 {
		sc.MinComputeInstances = c.MinComputeInstances
	}
	if c.MaxComputeInstances > 0 {
		sc.MaxComputeInstances = c.MaxComputeInstances
	}
	if c.EventsPerInstancePerSecond > 0 {
		sc.EventsPerInstancePerSecond = c.EventsPerInstancePerSecond
	}
	return sc, sc.Validate()
}

// CostingConfig extrai a topologia fixa da implantação.
func CostingConfig(c types.Config) costing.Config {
	cfg := costing.DefaultConfig()
	cfg.MonthlySecretOperations = c.MonthlySecretOperations
	cfg.PrivateConnectionCount = c.PrivateConnectionCount
	cfg.NetworkingSurcharge = c.NetworkingSurcharge
	cfg.IncludeEgress = c.IncludeEgress
	cfg.IncludeDSPM = c.IncludeDSPM
	cfg.IncludeSnapshot = c.IncludeSnapshot
	return cfg
}

// Classifier builds the environment/business-unit classifier; empty lists
// in the configuration keep the built-in defaults.
func Classifier(c types.Config) *rollup.Classifier {
	categories := rollup.DefaultCategories()
	if len(c.EnvironmentCategories) > 0 {
		categories = make([]rollup.Category, 0, len(c.EnvironmentCategories))
		for _, ec := range c.EnvironmentCategories {
			categories = append(categories, rollup.Category{
				Name:       ec.Name,
				Priority:   ec.Priority,
				Patterns:   ec.Patterns,
				Production: ec.Production,
			})
		}
	}

	buKeys := c.BusinessUnitTagKeys
	if len(buKeys) == 0 {
		buKeys = rollup.DefaultBusinessUnitTagKeys()
	}
	envKeys := c.EnvironmentTagKeys
	if len(envKeys) == 0 {
		envKeys = rollup.DefaultEnvironmentTagKeys()
	}

	return rollup.NewClassifier(categories, buKeys, envKeys, Labels(c))
}

// Labels devolve os rótulos padrão para unidades sem BU ou ambiente.
func Labels(c types.Config) rollup.Defaults {
	labels := rollup.DefaultLabels()
	if c.DefaultBusinessUnit != "" {
		labels.BusinessUnit = c.DefaultBusinessUnit
	}
	if c.DefaultEnvironment != "" {
		labels.Environment = c.DefaultEnvironment
	}
	return labels
}
