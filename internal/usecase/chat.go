package usecase

import (
	"context"
	"strings"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
	"answer-gateway/internal/stream"
)

const endpointChat = "chat"

type ChatInput struct {
	Messages []domain.ChatMessage
}

// Chat answers a conversation in one popular-science paragraph. Context is
// looked up for the latest user message; a conversation without one skips
// the lookup and is answered from its last message.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*stream.Stream, error) {
	if len(in.Messages) == 0 {
		return nil, newError(ErrorInvalidRequest, "empty_messages", nil)
	}
	for _, m := range in.Messages {
		if !m.Role.Valid() {
			return nil, newError(ErrorInvalidRequest, "invalid_role", nil)
		}
	}

	var enrichment domain.ContextEnrichment
	query := strings.TrimSpace(domain.LatestUserContent(in.Messages))
	if query != "" {
		enrichment = s.context.FetchContext(ctx, query)
	} else {
		query = in.Messages[len(in.Messages)-1].Content
	}

	req := llm.Request{
		System:      buildInstructions(chatPersona(), enrichment),
		Messages:    in.Messages,
		MaxTokens:   chatMaxTokens,
		Temperature: textTemperature,
	}
	return s.streamOrSimulate(ctx, endpointChat, req, chatFallback.Match(query))
}
