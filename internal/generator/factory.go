package generator

import (
	"fmt"

	"go.uber.org/zap"

	"mederror/internal/config"
	"mederror/internal/port"
)

// ProviderFactory creates a Generator from a provider config.
type ProviderFactory func(cfg *config.GeneratorProviderConfig) (port.Generator, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGenerator creates a Generator from a provider config using the registered factory.
func NewGenerator(cfg *config.GeneratorProviderConfig) (port.Generator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the primary generator, wrapped in a FallbackGenerator
// when secondary or tertiary providers are configured.
func NewFromConfig(cfg *config.GeneratorConfig, log *zap.Logger) (port.Generator, error) {
	tiers := []*config.GeneratorProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var gens []port.Generator
	var names []string
	for _, tier := range tiers {
		if tier == nil {
			continue
		}
		g, err := NewGenerator(tier)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
		names = append(names, tier.Provider)
	}

	if len(gens) == 1 {
		return gens[0], nil
	}
	return NewFallbackGenerator(gens, names, log), nil
}
