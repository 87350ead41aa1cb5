package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
	"answer-gateway/internal/stream"
)

const (
	endpointAsk    = "ask"
	maxQuestionLen = 2000
)

type AskInput struct {
	Question string
}

// Ask answers a single sidebar question. It skips context lookup; the
// persona already carries the featured study.
func (s *Service) Ask(ctx context.Context, in AskInput) (*stream.Stream, error) {
	question := strings.TrimSpace(in.Question)
	if question == "" {
		return nil, newError(ErrorInvalidRequest, "empty_question", nil)
	}
	if utf8.RuneCountInString(question) > maxQuestionLen {
		return nil, newError(ErrorInvalidRequest, "question_too_long", nil)
	}

	req := llm.Request{
		System:      askPersona(),
		Messages:    []domain.ChatMessage{{Role: domain.RoleUser, Content: question}},
		MaxTokens:   askMaxTokens,
		Temperature: textTemperature,
	}
	return s.streamOrSimulate(ctx, endpointAsk, req, askFallback.Match(question))
}
