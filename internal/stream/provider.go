package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"answer-gateway/internal/llm"
)

// ErrGenerationFailed reports that the provider failed before producing any
// output. Callers are expected to degrade instead of surfacing it.
var ErrGenerationFailed = errors.New("stream: generation failed")

var errNoOutput = errors.New("provider completed without output")

// Opener starts a provider token stream.
type Opener func(ctx context.Context) (llm.TokenStream, error)

// FromProvider opens a provider stream and waits for its first token, so a
// failure that happens before any output is returned as ErrGenerationFailed.
// Failures after that end the stream early; see Stream.Err.
func FromProvider(ctx context.Context, origin string, open Opener) (*Stream, error) {
	ts, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	first, err := firstToken(ts)
	if err != nil {
		_ = ts.Close()
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	s := &Stream{
		ctx:     ctx,
		kind:    KindProvider,
		origin:  origin,
		release: func() { _ = ts.Close() },
	}
	pending := &first
	s.next = func() (string, bool) {
		if pending != nil {
			tok := *pending
			pending = nil
			return tok, true
		}
		for ctx.Err() == nil {
			tok, err := ts.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					s.err = err
				}
				return "", false
			}
			if tok != "" {
				return tok, true
			}
		}
		return "", false
	}
	return s, nil
}

func firstToken(ts llm.TokenStream) (string, error) {
	for {
		tok, err := ts.Recv()
		if errors.Is(err, io.EOF) {
			return "", errNoOutput
		}
		if err != nil {
			return "", err
		}
		if tok != "" {
			return tok, nil
		}
	}
}
