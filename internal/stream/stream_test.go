package stream

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
)

type fakeTokens struct {
	tokens []string
	errAt  int
	err    error
	pos    int
	closed bool
}

func (f *fakeTokens) Recv() (string, error) {
	if f.err != nil && f.pos == f.errAt {
		return "", f.err
	}
	if f.pos >= len(f.tokens) {
		return "", io.EOF
	}
	tok := f.tokens[f.pos]
	f.pos++
	return tok, nil
}

func (f *fakeTokens) Close() error {
	f.closed = true
	return nil
}

func opener(ts *fakeTokens) Opener {
	return func(context.Context) (llm.TokenStream, error) { return ts, nil }
}

func collect(s *Stream) []domain.Fragment {
	var out []domain.Fragment
	for f := range s.Fragments() {
		out = append(out, f)
	}
	return out
}

func requireOrdered(t *testing.T, frags []domain.Fragment) {
	t.Helper()
	for i, f := range frags {
		require.Equal(t, i, f.Seq)
		require.Equal(t, i == len(frags)-1, f.Terminal, "only the last fragment is terminal")
	}
	require.Empty(t, frags[len(frags)-1].Payload)
}

func TestSimulated_EmitsOneFragmentPerWordPlusTerminal(t *testing.T) {
	text := "Researchers found tooth marks on two fossil jaws"
	s := Simulated(context.Background(), text, 0)

	frags := collect(s)
	words := strings.Fields(text)
	require.Len(t, frags, len(words)+1)
	requireOrdered(t, frags)

	payloads := make([]string, 0, len(words))
	for _, f := range frags[:len(words)] {
		payloads = append(payloads, f.Payload)
	}
	require.Equal(t, text, strings.Join(payloads, " "))
	require.Equal(t, KindSimulated, s.Kind())
}

func TestSimulated_TextJoinsWithSpaces(t *testing.T) {
	s := Simulated(context.Background(), "one two three", 0)
	var b strings.Builder
	for f := range s.Fragments() {
		b.WriteString(s.Text(f))
	}
	require.Equal(t, "one two three", b.String())
}

func TestSimulated_EmptyTextOnlyTerminal(t *testing.T) {
	frags := collect(Simulated(context.Background(), "   ", 0))
	require.Equal(t, []domain.Fragment{{Seq: 0, Terminal: true}}, frags)
}

func TestSimulated_WaitsBetweenWords(t *testing.T) {
	start := time.Now()
	frags := collect(Simulated(context.Background(), "a b c", 10*time.Millisecond))
	require.Len(t, frags, 4)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSimulated_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := Simulated(ctx, "a b c d e", 20*time.Millisecond)

	var frags []domain.Fragment
	for f := range s.Fragments() {
		frags = append(frags, f)
		if f.Seq == 1 {
			cancel()
		}
	}
	require.Len(t, frags, 2, "no fragment, terminal included, after cancellation")
	require.False(t, frags[1].Terminal)
}

func TestSimulated_SingleUse(t *testing.T) {
	s := Simulated(context.Background(), "a b", 0)
	require.Len(t, collect(s), 3)
	require.Empty(t, collect(s))
}

func TestFromProvider_HappyPath(t *testing.T) {
	ts := &fakeTokens{tokens: []string{"", "Hello", ",", "", " world"}}
	s, err := FromProvider(context.Background(), "openai/gpt", opener(ts))
	require.NoError(t, err)

	frags := collect(s)
	require.Len(t, frags, 4)
	requireOrdered(t, frags)
	require.Equal(t, "Hello", frags[0].Payload)
	require.Equal(t, " world", frags[2].Payload)
	require.True(t, ts.closed)
	require.NoError(t, s.Err())
	require.Equal(t, "openai/gpt", s.Origin())

	var b strings.Builder
	for _, f := range frags {
		b.WriteString(s.Text(f))
	}
	require.Equal(t, "Hello, world", b.String())
}

func TestFromProvider_FailureBeforeOutput(t *testing.T) {
	cases := []struct {
		name string
		open Opener
	}{
		{name: "open error", open: func(context.Context) (llm.TokenStream, error) { return nil, errors.New("401") }},
		{name: "first recv error", open: opener(&fakeTokens{err: errors.New("boom"), errAt: 0})},
		{name: "no output", open: opener(&fakeTokens{tokens: []string{"", ""}})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromProvider(context.Background(), "p", tc.open)
			require.ErrorIs(t, err, ErrGenerationFailed)
		})
	}
}

func TestFromProvider_FailureBeforeOutputClosesSource(t *testing.T) {
	ts := &fakeTokens{err: errors.New("boom"), errAt: 0}
	_, err := FromProvider(context.Background(), "p", opener(ts))
	require.Error(t, err)
	require.True(t, ts.closed)
}

func TestFromProvider_MidStreamFailureTerminatesCleanly(t *testing.T) {
	ts := &fakeTokens{tokens: []string{"a", "b", "c"}, err: errors.New("reset"), errAt: 2}
	s, err := FromProvider(context.Background(), "p", opener(ts))
	require.NoError(t, err)

	frags := collect(s)
	require.Len(t, frags, 3)
	requireOrdered(t, frags)
	require.Equal(t, "b", frags[1].Payload)
	require.EqualError(t, s.Err(), "reset")
}

func TestFromProvider_ConsumerBreakReleases(t *testing.T) {
	ts := &fakeTokens{tokens: []string{"a", "b", "c"}}
	s, err := FromProvider(context.Background(), "p", opener(ts))
	require.NoError(t, err)

	for range s.Fragments() {
		break
	}
	require.True(t, ts.closed)
}

func TestFromProvider_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ts := &fakeTokens{tokens: []string{"a", "b", "c"}}
	s, err := FromProvider(ctx, "p", opener(ts))
	require.NoError(t, err)

	var frags []domain.Fragment
	for f := range s.Fragments() {
		frags = append(frags, f)
		cancel()
	}
	require.Len(t, frags, 1)
	require.NoError(t, s.Err())
}
