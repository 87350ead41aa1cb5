package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
	"answer-gateway/internal/observability"
	"answer-gateway/internal/provider"
	"answer-gateway/internal/stream"
	"answer-gateway/internal/uigen"
)

type ContextFetcher interface {
	FetchContext(ctx context.Context, query string) domain.ContextEnrichment
	Configured() bool
}

type GeneratorFactory interface {
	Resolve(purpose provider.Purpose) (provider.Handle, bool)
	New(h provider.Handle) (llm.Generator, error)
}

type Deps struct {
	Context     ContextFetcher
	Providers   GeneratorFactory
	Synthesizer *uigen.Synthesizer
	Logger      *slog.Logger

	// WordDelay paces simulated streams. Zero means stream.DefaultWordDelay.
	WordDelay time.Duration
	// SimulateWithoutProvider enables canned streaming when no provider
	// credential is configured. When false such requests fail with
	// INTERNAL_ERROR.
	SimulateWithoutProvider bool
	Now                     func() time.Time
}

// Service orchestrates every gateway endpoint. It holds only read-only
// configuration and is safe for concurrent use.
type Service struct {
	context   ContextFetcher
	providers GeneratorFactory
	synth     *uigen.Synthesizer
	logger    *slog.Logger
	wordDelay time.Duration
	simulate  bool
	now       func() time.Time
}

func New(d Deps) (*Service, error) {
	if d.Context == nil {
		return nil, errors.New("usecase: context fetcher must not be nil")
	}
	if d.Providers == nil {
		return nil, errors.New("usecase: generator factory must not be nil")
	}
	s := &Service{
		context:   d.Context,
		providers: d.Providers,
		synth:     d.Synthesizer,
		logger:    d.Logger,
		wordDelay: d.WordDelay,
		simulate:  d.SimulateWithoutProvider,
		now:       d.Now,
	}
	if s.synth == nil {
		s.synth = uigen.NewSynthesizer(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.wordDelay <= 0 {
		s.wordDelay = stream.DefaultWordDelay
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// streamOrSimulate streams req from the resolved provider and degrades to
// a simulated stream of fallbackText when there is no provider or the
// provider fails before its first token.
func (s *Service) streamOrSimulate(ctx context.Context, endpoint string, req llm.Request, fallbackText string) (*stream.Stream, error) {
	h, ok := s.providers.Resolve(provider.PurposeText)
	if !ok {
		if !s.simulate {
			return nil, newError(ErrorInternal, "provider_not_configured", nil)
		}
		observability.FallbacksTotal.WithLabelValues(endpoint, "no_provider").Inc()
		return stream.Simulated(ctx, fallbackText, s.wordDelay), nil
	}

	gen, err := s.providers.New(h)
	if err != nil {
		s.degrade(ctx, endpoint, h, "provider_build_error", err)
		return stream.Simulated(ctx, fallbackText, s.wordDelay), nil
	}

	st, err := stream.FromProvider(ctx, gen.Name(), func(ctx context.Context) (llm.TokenStream, error) {
		return gen.StreamText(ctx, req)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrClientGone, ctx.Err())
		}
		s.degrade(ctx, endpoint, h, "provider_error", err)
		return stream.Simulated(ctx, fallbackText, s.wordDelay), nil
	}
	observability.ProviderRequestsTotal.WithLabelValues(string(h.Provider), h.Model, "ok").Inc()
	return st, nil
}

func (s *Service) degrade(ctx context.Context, endpoint string, h provider.Handle, reason string, err error) {
	degraded := newError(ErrorUpstreamDegraded, reason, err)
	s.logger.WarnContext(ctx, "generation degraded to local output",
		slog.String("endpoint", endpoint),
		slog.String("provider", h.String()),
		slog.String("reason", reason),
		slog.Any("error", degraded),
	)
	observability.ProviderRequestsTotal.WithLabelValues(string(h.Provider), h.Model, "error").Inc()
	observability.FallbacksTotal.WithLabelValues(endpoint, reason).Inc()
}
