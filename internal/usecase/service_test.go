package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/llm"
	"answer-gateway/internal/provider"
	"answer-gateway/internal/stream"
	"answer-gateway/internal/uigen"
)

type fakeContext struct {
	enrichment domain.ContextEnrichment
	configured bool
	queries    []string
}

func (f *fakeContext) FetchContext(_ context.Context, query string) domain.ContextEnrichment {
	f.queries = append(f.queries, query)
	return f.enrichment
}

func (f *fakeContext) Configured() bool { return f.configured }

type fakeFactory struct {
	handles  map[provider.Purpose]provider.Handle
	gen      *fakeGenerator
	buildErr error
	built    []provider.Handle
}

func (f *fakeFactory) Resolve(purpose provider.Purpose) (provider.Handle, bool) {
	h, ok := f.handles[purpose]
	return h, ok
}

func (f *fakeFactory) New(h provider.Handle) (llm.Generator, error) {
	f.built = append(f.built, h)
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.gen, nil
}

type fakeGenerator struct {
	tokens    []string
	streamErr error
	object    string
	objectErr error

	textReq   llm.Request
	objectReq llm.ObjectRequest
}

func (g *fakeGenerator) StreamText(_ context.Context, req llm.Request) (llm.TokenStream, error) {
	g.textReq = req
	if g.streamErr != nil {
		return nil, g.streamErr
	}
	return &fakeTokenStream{tokens: g.tokens}, nil
}

func (g *fakeGenerator) GenerateObject(_ context.Context, req llm.ObjectRequest) (string, error) {
	g.objectReq = req
	return g.object, g.objectErr
}

func (g *fakeGenerator) Name() string { return "fake/model" }

type fakeTokenStream struct {
	tokens []string
	pos    int
}

func (s *fakeTokenStream) Recv() (string, error) {
	if s.pos >= len(s.tokens) {
		return "", io.EOF
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

func (s *fakeTokenStream) Close() error { return nil }

var (
	textHandle = provider.Handle{Provider: provider.OpenAI, Model: "gpt-4o-mini"}
	uiHandle   = provider.Handle{Provider: provider.OpenAI, Model: "gpt-4o"}
)

func withProvider(gen *fakeGenerator) *fakeFactory {
	return &fakeFactory{
		handles: map[provider.Purpose]provider.Handle{
			provider.PurposeText:       textHandle,
			provider.PurposeStructured: uiHandle,
		},
		gen: gen,
	}
}

func newTestService(t *testing.T, cf *fakeContext, pf *fakeFactory) *Service {
	t.Helper()
	svc, err := New(Deps{
		Context:                 cf,
		Providers:               pf,
		WordDelay:               time.Microsecond,
		SimulateWithoutProvider: true,
		Now:                     func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc
}

func drain(s *stream.Stream) (string, int) {
	var b strings.Builder
	terminals := 0
	for f := range s.Fragments() {
		if f.Terminal {
			terminals++
			continue
		}
		b.WriteString(s.Text(f))
	}
	return b.String(), terminals
}

func requireCode(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var uerr *Error
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, code, uerr.Code)
	require.Equal(t, reason, uerr.Reason)
}

func words(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Deps{Providers: &fakeFactory{}})
	require.Error(t, err)
	_, err = New(Deps{Context: &fakeContext{}})
	require.Error(t, err)
}

func TestChat_InvalidInputSkipsContextLookup(t *testing.T) {
	tests := []struct {
		name     string
		messages []domain.ChatMessage
		reason   string
	}{
		{name: "empty list", messages: []domain.ChatMessage{}, reason: "empty_messages"},
		{name: "nil list", messages: nil, reason: "empty_messages"},
		{name: "unknown role", messages: []domain.ChatMessage{{Role: "tool", Content: "hi"}}, reason: "invalid_role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := &fakeContext{}
			pf := withProvider(&fakeGenerator{tokens: []string{"x"}})
			svc := newTestService(t, cf, pf)

			s, err := svc.Chat(context.Background(), ChatInput{Messages: tt.messages})
			require.Nil(t, s)
			requireCode(t, err, ErrorInvalidRequest, tt.reason)
			require.Empty(t, cf.queries)
			require.Empty(t, pf.built)
		})
	}
}

func TestChat_WithoutUserContentSkipsContextLookup(t *testing.T) {
	tests := []struct {
		name     string
		messages []domain.ChatMessage
		want     string
	}{
		{
			name:     "assistant only",
			messages: []domain.ChatMessage{{Role: domain.RoleAssistant, Content: "Ask me about tech"}},
			want:     chatFallback.Match("tech"),
		},
		{
			name:     "blank user message",
			messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "  "}},
			want:     chatFallback.Match(""),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cf := &fakeContext{}
			svc := newTestService(t, cf, &fakeFactory{})

			s, err := svc.Chat(context.Background(), ChatInput{Messages: tt.messages})
			require.NoError(t, err)
			require.Empty(t, cf.queries)

			text, terminals := drain(s)
			require.Equal(t, 1, terminals)
			require.Equal(t, words(tt.want), text)
		})
	}
}

func TestChat_ProviderStreamsWithoutUserMessage(t *testing.T) {
	cf := &fakeContext{enrichment: domain.ContextEnrichment{ContextText: "unused"}}
	gen := &fakeGenerator{tokens: []string{"ok"}}
	svc := newTestService(t, cf, withProvider(gen))

	msgs := []domain.ChatMessage{{Role: domain.RoleAssistant, Content: "hello"}}
	s, err := svc.Chat(context.Background(), ChatInput{Messages: msgs})
	require.NoError(t, err)
	text, _ := drain(s)
	require.Equal(t, "ok", text)
	require.Empty(t, cf.queries)
	require.Equal(t, chatPersona(), gen.textReq.System)
	require.Equal(t, msgs, gen.textReq.Messages)
}

func TestChat_NoProviderSimulatesTopicAnswer(t *testing.T) {
	cf := &fakeContext{}
	svc := newTestService(t, cf, &fakeFactory{})

	s, err := svc.Chat(context.Background(), ChatInput{Messages: []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi there"},
		{Role: domain.RoleUser, Content: "Tell me about AI"},
	}})
	require.NoError(t, err)
	require.Equal(t, stream.KindSimulated, s.Kind())
	require.Equal(t, []string{"Tell me about AI"}, cf.queries)

	text, terminals := drain(s)
	require.Equal(t, 1, terminals)
	require.Equal(t, words(chatFallback.Match("ai")), text)
}

func TestChat_ProviderReceivesPersonaContextAndSources(t *testing.T) {
	cf := &fakeContext{enrichment: domain.ContextEnrichment{
		ContextText:   "Transformers rely on attention.",
		Sources:       []domain.Source{{Title: "AI Papers"}, {Title: "ML Docs"}},
		RelatedTopics: []string{"neural networks"},
	}}
	gen := &fakeGenerator{tokens: []string{"Hello", ", ", "world"}}
	svc := newTestService(t, cf, withProvider(gen))

	msgs := []domain.ChatMessage{{Role: domain.RoleUser, Content: "What is AI?"}}
	s, err := svc.Chat(context.Background(), ChatInput{Messages: msgs})
	require.NoError(t, err)
	require.Equal(t, stream.KindProvider, s.Kind())
	require.Equal(t, "fake/model", s.Origin())

	text, terminals := drain(s)
	require.Equal(t, "Hello, world", text)
	require.Equal(t, 1, terminals)

	require.Equal(t, chatMaxTokens, gen.textReq.MaxTokens)
	require.InDelta(t, 0.7, gen.textReq.Temperature, 1e-9)
	require.Equal(t, msgs, gen.textReq.Messages)
	require.True(t, strings.HasPrefix(gen.textReq.System, chatPersona()))
	require.Contains(t, gen.textReq.System, "Transformers rely on attention.")
	require.Contains(t, gen.textReq.System, "AI Papers, ML Docs")
	require.Contains(t, gen.textReq.System, "neural networks")
}

func TestChat_ProviderFailureDegradesToSimulation(t *testing.T) {
	tests := []struct {
		name string
		pf   *fakeFactory
	}{
		{name: "stream error", pf: withProvider(&fakeGenerator{streamErr: errors.New("boom")})},
		{name: "empty output", pf: withProvider(&fakeGenerator{})},
		{name: "build error", pf: func() *fakeFactory {
			f := withProvider(nil)
			f.buildErr = errors.New("bad key")
			return f
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &fakeContext{}, tt.pf)
			s, err := svc.Chat(context.Background(), ChatInput{Messages: []domain.ChatMessage{
				{Role: domain.RoleUser, Content: "any tech news?"},
			}})
			require.NoError(t, err)
			require.Equal(t, stream.KindSimulated, s.Kind())

			text, _ := drain(s)
			require.Equal(t, words(chatFallback.Match("tech")), text)
		})
	}
}

func TestChat_NoProviderWithoutSimulationIsInternal(t *testing.T) {
	svc, err := New(Deps{Context: &fakeContext{}, Providers: &fakeFactory{}})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), ChatInput{Messages: []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}})
	requireCode(t, err, ErrorInternal, "provider_not_configured")
}

func TestAsk_Validation(t *testing.T) {
	cf := &fakeContext{}
	svc := newTestService(t, cf, &fakeFactory{})

	_, err := svc.Ask(context.Background(), AskInput{Question: "   "})
	requireCode(t, err, ErrorInvalidRequest, "empty_question")

	_, err = svc.Ask(context.Background(), AskInput{Question: strings.Repeat("é", maxQuestionLen+1)})
	requireCode(t, err, ErrorInvalidRequest, "question_too_long")

	require.Empty(t, cf.queries)
}

func TestAsk_NoProviderStreamsStudySummary(t *testing.T) {
	cf := &fakeContext{}
	svc := newTestService(t, cf, &fakeFactory{})

	s, err := svc.Ask(context.Background(), AskInput{Question: "What is H. habilis?"})
	require.NoError(t, err)

	text, terminals := drain(s)
	require.Equal(t, 1, terminals)
	require.NotEmpty(t, text)
	require.Contains(t, text, "Olduvai Gorge")
	require.Empty(t, cf.queries, "ask never consults the context service")
}

func TestAsk_ProviderRequest(t *testing.T) {
	gen := &fakeGenerator{tokens: []string{"Leopards", " ate", " them."}}
	svc := newTestService(t, &fakeContext{}, withProvider(gen))

	s, err := svc.Ask(context.Background(), AskInput{Question: "  Who ate H. habilis? "})
	require.NoError(t, err)
	text, _ := drain(s)
	require.Equal(t, "Leopards ate them.", text)

	require.Equal(t, askMaxTokens, gen.textReq.MaxTokens)
	require.Equal(t, askPersona(), gen.textReq.System)
	require.Contains(t, gen.textReq.System, "400-500 characters")
	require.Equal(t, []domain.ChatMessage{{Role: domain.RoleUser, Content: "Who ate H. habilis?"}}, gen.textReq.Messages)
}

func TestAsk_CancelledBeforeFirstToken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{streamErr: context.Canceled}
	svc := newTestService(t, &fakeContext{}, withProvider(gen))

	s, err := svc.Ask(ctx, AskInput{Question: "hi"})
	require.Nil(t, s)
	require.ErrorIs(t, err, ErrClientGone)
	require.ErrorIs(t, err, context.Canceled)

	var uerr *Error
	require.False(t, errors.As(err, &uerr), "a disconnect is not a usecase error code")
}

func TestGenerateUI_EmptyPrompt(t *testing.T) {
	pf := withProvider(&fakeGenerator{})
	svc := newTestService(t, &fakeContext{}, pf)

	_, err := svc.GenerateUI(context.Background(), UIInput{Prompt: " "})
	requireCode(t, err, ErrorInvalidRequest, "empty_prompt")
	require.Empty(t, pf.built)
}

func TestGenerateUI_NoProviderSynthesizes(t *testing.T) {
	svc := newTestService(t, &fakeContext{}, &fakeFactory{})

	res, err := svc.GenerateUI(context.Background(), UIInput{Prompt: "make a todo list"})
	require.NoError(t, err)
	require.Equal(t, domain.UIKindTodo, res.Type)
	require.True(t, res.UI.Interactive)
	require.NotEmpty(t, res.UI.Markup)
}

func TestGenerateUI_ProviderFaultsSynthesize(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "call error", gen: &fakeGenerator{objectErr: errors.New("timeout")}},
		{name: "not json", gen: &fakeGenerator{object: "sorry, I cannot"}},
		{name: "unknown type", gen: &fakeGenerator{object: `{"type":"chart","content":"x","ui":{"html":"<div></div>","interactive":false}}`}},
		{name: "missing ui", gen: &fakeGenerator{object: `{"type":"news","content":"x"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, &fakeContext{}, withProvider(tt.gen))

			res, err := svc.GenerateUI(context.Background(), UIInput{Prompt: "show me a dashboard"})
			require.NoError(t, err)
			require.Equal(t, domain.UIKindDashboard, res.Type)
			require.True(t, res.UI.Interactive)
		})
	}
}

func TestGenerateUI_ProviderResult(t *testing.T) {
	gen := &fakeGenerator{object: `{"type":"news","content":"Headlines","ui":{"html":"<article></article>","interactive":false}}`}
	pf := withProvider(gen)
	svc := newTestService(t, &fakeContext{}, pf)

	res, err := svc.GenerateUI(context.Background(), UIInput{Prompt: "latest science", Type: "News"})
	require.NoError(t, err)
	require.Equal(t, domain.UIGenerationResult{
		Type:    domain.UIKindNews,
		Content: "Headlines",
		UI:      domain.UIComponent{Markup: "<article></article>"},
	}, res)

	require.Equal(t, []provider.Handle{uiHandle}, pf.built)
	require.Equal(t, uigen.SchemaName, gen.objectReq.SchemaName)
	require.Same(t, uigen.Schema(), gen.objectReq.Schema)
	require.Contains(t, gen.objectReq.Prompt, "latest science")
	require.Contains(t, gen.objectReq.Prompt, "Preferred type: news")
	require.Contains(t, gen.objectReq.System, "generated-todo-list")
}

func TestHealth(t *testing.T) {
	svc := newTestService(t, &fakeContext{configured: true}, withProvider(&fakeGenerator{}))
	require.Equal(t, HealthStatus{
		Status:             "healthy",
		Timestamp:          "2025-01-02T03:04:05Z",
		ProviderConfigured: true,
		Provider:           "openai",
		ContextConfigured:  true,
	}, svc.Health(context.Background()))

	svc = newTestService(t, &fakeContext{}, &fakeFactory{})
	h := svc.Health(context.Background())
	require.False(t, h.ProviderConfigured)
	require.Empty(t, h.Provider)
}

func TestBuildInstructions(t *testing.T) {
	require.Equal(t, "persona", buildInstructions("persona", domain.ContextEnrichment{}))

	got := buildInstructions("persona", domain.ContextEnrichment{
		ContextText: "  some\n context ",
		Sources:     []domain.Source{{Title: "A"}},
	})
	require.Equal(t, "persona\n\nRelevant context:\nsome context\n\nWhen relevant, reference these sources: A", got)
}

func TestErrorFormatting(t *testing.T) {
	inner := errors.New("dial tcp")
	err := newError(ErrorUpstreamDegraded, "provider_error", inner)
	require.ErrorIs(t, err, inner)
	require.Equal(t, "usecase: UPSTREAM_DEGRADED (provider_error): dial tcp", err.Error())
	require.Equal(t, "usecase: INVALID_REQUEST (empty_prompt)", newError(ErrorInvalidRequest, "empty_prompt", nil).Error())
}
