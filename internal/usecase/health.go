package usecase

import (
	"context"
	"time"

	"answer-gateway/internal/provider"
)

type HealthStatus struct {
	Status             string `json:"status"`
	Timestamp          string `json:"timestamp"`
	ProviderConfigured bool   `json:"providerConfigured"`
	Provider           string `json:"provider,omitempty"`
	ContextConfigured  bool   `json:"contextConfigured"`
}

func (s *Service) Health(_ context.Context) HealthStatus {
	h, ok := s.providers.Resolve(provider.PurposeText)
	status := HealthStatus{
		Status:             "healthy",
		Timestamp:          s.now().UTC().Format(time.RFC3339),
		ProviderConfigured: ok,
		ContextConfigured:  s.context.Configured(),
	}
	if ok {
		status.Provider = string(h.Provider)
	}
	return status
}
