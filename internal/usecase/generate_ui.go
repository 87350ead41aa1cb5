package usecase

import (
	"context"
	"log/slog"
	"strings"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
	"answer-gateway/internal/observability"
	"answer-gateway/internal/provider"
	"answer-gateway/internal/uigen"
)

const endpointGenerateUI = "generate_ui"

type UIInput struct {
	Prompt string
	// Type is a kind hint. Unknown values are ignored.
	Type string
}

// GenerateUI returns a schema-valid component for the prompt. Provider
// output that is missing, failing or invalid is replaced by the
// synthesizer's template.
func (s *Service) GenerateUI(ctx context.Context, in UIInput) (domain.UIGenerationResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return domain.UIGenerationResult{}, newError(ErrorInvalidRequest, "empty_prompt", nil)
	}
	hint := strings.ToLower(strings.TrimSpace(in.Type))

	h, ok := s.providers.Resolve(provider.PurposeStructured)
	if !ok {
		observability.FallbacksTotal.WithLabelValues(endpointGenerateUI, "no_provider").Inc()
		return s.synth.Synthesize(prompt, hint), nil
	}

	res, reason, err := s.generateUI(ctx, h, prompt, hint)
	if err != nil {
		s.degrade(ctx, endpointGenerateUI, h, reason, err)
		return s.synth.Synthesize(prompt, hint), nil
	}
	observability.ProviderRequestsTotal.WithLabelValues(string(h.Provider), h.Model, "ok").Inc()
	return res, nil
}

func (s *Service) generateUI(ctx context.Context, h provider.Handle, prompt, hint string) (domain.UIGenerationResult, string, error) {
	gen, err := s.providers.New(h)
	if err != nil {
		return domain.UIGenerationResult{}, "provider_build_error", err
	}
	raw, err := gen.GenerateObject(ctx, llm.ObjectRequest{
		System:      uiPersona(),
		Prompt:      buildUIPrompt(prompt, hint),
		SchemaName:  uigen.SchemaName,
		Schema:      uigen.Schema(),
		Temperature: uiTemperature,
	})
	if err != nil {
		return domain.UIGenerationResult{}, "provider_error", err
	}
	res, err := uigen.Validate(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected generated ui", slog.Int("bytes", len(raw)))
		return domain.UIGenerationResult{}, "schema_rejected", err
	}
	return res, "", nil
}
