package provider

import (
	"errors"
	"fmt"

	"answer-gateway/internal/llm"
)

// Builder constructs a generator for one provider from its credential.
type Builder func(apiKey, model string) (llm.Generator, error)

// Factory turns a Handle into a fresh llm.Generator. It holds no per-request
// state.
type Factory struct {
	settings Settings
	builders map[ID]Builder
}

// NewFactory binds provider settings to per-provider builders.
func NewFactory(settings Settings, builders map[ID]Builder) (*Factory, error) {
	if len(builders) == 0 {
		return nil, errors.New("provider: at least one builder is required")
	}
	return &Factory{settings: settings, builders: builders}, nil
}

// Settings returns the configuration the factory resolves against.
func (f *Factory) Settings() Settings {
	return f.settings
}

// Resolve is Resolve applied to the factory's settings.
func (f *Factory) Resolve(purpose Purpose) (Handle, bool) {
	return Resolve(f.settings, purpose)
}

// New builds a generator for h.
func (f *Factory) New(h Handle) (llm.Generator, error) {
	build, ok := f.builders[h.Provider]
	if !ok {
		return nil, fmt.Errorf("provider: no builder registered for %q", h.Provider)
	}
	gen, err := build(f.settings.Credentials[h.Provider], h.Model)
	if err != nil {
		return nil, fmt.Errorf("provider: build %s: %w", h, err)
	}
	return gen, nil
}
