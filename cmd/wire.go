package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"answer-gateway/handler"
	"answer-gateway/internal/config"
	"answer-gateway/internal/integrations/anthropic"
	"answer-gateway/internal/integrations/context7"
	"answer-gateway/internal/integrations/openai"
	"answer-gateway/internal/integrations/paramstore"
	"answer-gateway/internal/llm"
	"answer-gateway/internal/provider"
	"answer-gateway/internal/repository"
	"answer-gateway/internal/uigen"
	"answer-gateway/internal/usecase"
)

type app struct {
	cfg                config.Config
	logger             *slog.Logger
	handler            *handler.Handler
	providerConfigured bool
	contextConfigured  bool
}

func buildApp(ctx context.Context, path string) (*app, error) {
	// ---- Configuration (read only here) ----
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// ---- AWS SDK config ----
	var ctxOpts []context7.Option
	if cfg.AWS.ParamPrefix != "" || cfg.Context.CacheTable != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		if cfg.AWS.ParamPrefix != "" {
			if err := loadSecrets(ctx, &cfg, awsssm.NewFromConfig(awsCfg)); err != nil {
				return nil, err
			}
		}
		if cfg.Context.CacheTable != "" {
			cache, err := repository.NewContextCache(awsdynamodb.NewFromConfig(awsCfg), cfg.Context.CacheTable,
				repository.WithTTL(cfg.Context.CacheTTL))
			if err != nil {
				return nil, fmt.Errorf("create context cache: %w", err)
			}
			ctxOpts = append(ctxOpts, context7.WithCache(cache))
		}
	}

	// ---- Clients ----
	contextClient := context7.New(context7.Config{
		APIKey:     cfg.Context.APIKey,
		BaseURL:    cfg.Context.BaseURL,
		Timeout:    cfg.Context.Timeout,
		LibraryIDs: cfg.Context.LibraryIDs,
	}, append(ctxOpts, context7.WithLogger(logger))...)

	settings := cfg.ProviderSettings()
	factory, err := provider.NewFactory(settings, providerBuilders(cfg))
	if err != nil {
		return nil, fmt.Errorf("create provider factory: %w", err)
	}

	// ---- Handler ----
	svc, err := usecase.New(usecase.Deps{
		Context:                 contextClient,
		Providers:               factory,
		Synthesizer:             uigen.NewSynthesizer(nil),
		Logger:                  logger,
		WordDelay:               cfg.Simulation.WordDelay,
		SimulateWithoutProvider: cfg.Simulation.WithoutProvider,
	})
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	h, err := handler.NewHandler(svc, handler.Options{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Diagnostics:    cfg.Server.Diagnostics,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create handler: %w", err)
	}

	return &app{
		cfg:                cfg,
		logger:             logger,
		handler:            h,
		providerConfigured: settings.Configured(),
		contextConfigured:  contextClient.Configured(),
	}, nil
}

// loadSecrets fills credentials the environment left empty from Parameter
// Store.
func loadSecrets(ctx context.Context, cfg *config.Config, api *awsssm.Client) error {
	ps, err := paramstore.New(api)
	if err != nil {
		return fmt.Errorf("create SSM client: %w", err)
	}
	creds, err := paramstore.LoadCredentials(ctx, ps, cfg.AWS.ParamPrefix)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&cfg.Providers.OpenAI.APIKey, creds.OpenAI)
	fill(&cfg.Providers.Anthropic.APIKey, creds.Anthropic)
	fill(&cfg.Context.APIKey, creds.Context7)
	return nil
}

func providerBuilders(cfg config.Config) map[provider.ID]provider.Builder {
	// Shared so per-request generators reuse connections.
	httpClient := &http.Client{Transport: http.DefaultTransport, Timeout: 2 * time.Minute}

	return map[provider.ID]provider.Builder{
		provider.OpenAI: func(apiKey, model string) (llm.Generator, error) {
			return openai.NewClient(apiKey, model,
				openai.WithBaseURL(cfg.Providers.OpenAI.BaseURL),
				openai.WithHTTPClient(httpClient),
			)
		},
		provider.Anthropic: func(apiKey, model string) (llm.Generator, error) {
			return anthropic.NewClient(apiKey, model,
				anthropic.WithBaseURL(cfg.Providers.Anthropic.BaseURL),
				anthropic.WithHTTPClient(httpClient),
			)
		},
	}
}
