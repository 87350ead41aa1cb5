// Package stream unifies provider token streams and locally simulated text
// into one ordered, finite sequence of fragments.
package stream

import (
	"context"
	"iter"

	"answer-gateway/internal/domain"
)

// Kind names the origin of a stream.
type Kind string

const (
	KindProvider  Kind = "provider"
	KindSimulated Kind = "simulated"
)

// Stream is a single-use fragment sequence. Iteration stops as soon as the
// owning context is cancelled; no fragment, terminal included, is produced
// after that.
type Stream struct {
	ctx     context.Context
	kind    Kind
	joiner  string
	origin  string
	next    func() (string, bool)
	release func()

	consumed bool
	err      error
}

// Kind reports where the fragments come from.
func (s *Stream) Kind() Kind { return s.kind }

// Origin names the backend that produced the stream, e.g. "openai/gpt-4o-mini".
func (s *Stream) Origin() string { return s.origin }

// Err returns the provider error that cut the stream short, if any. It is
// only meaningful after iteration has finished.
func (s *Stream) Err() error { return s.err }

// Text renders a content fragment for a byte-oriented transport: every
// fragment after the first is prefixed with the stream's word separator.
func (s *Stream) Text(f domain.Fragment) string {
	if f.Terminal {
		return ""
	}
	if f.Seq > 0 {
		return s.joiner + f.Payload
	}
	return f.Payload
}

// Fragments yields content fragments followed by one terminal fragment.
// Breaking out of the loop releases the underlying source.
func (s *Stream) Fragments() iter.Seq[domain.Fragment] {
	return func(yield func(domain.Fragment) bool) {
		if s.consumed {
			return
		}
		s.consumed = true
		defer s.release()

		seq := 0
		for {
			payload, ok := s.next()
			if !ok {
				break
			}
			if !yield(domain.Fragment{Payload: payload, Seq: seq}) {
				return
			}
			seq++
		}
		if s.ctx.Err() != nil {
			return
		}
		yield(domain.Fragment{Seq: seq, Terminal: true})
	}
}
