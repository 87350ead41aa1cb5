// Package transport frames fragment streams for the wire. The engine in
// package stream knows nothing about framing; each writer here consumes a
// stream in order and serializes it for one transport.
package transport

import (
	"errors"
	"fmt"
	"net/http"

	"answer-gateway/internal/observability"
	"answer-gateway/internal/stream"
)

// textEvent and doneEvent are the payloads of the event-oriented transports.
type textEvent struct {
	Text string `json:"text"`
}

type doneEvent struct {
	Done bool `json:"done"`
}

// flush pushes buffered bytes to the client. Writers that cannot flush still
// deliver everything when the handler returns.
func flush(rc *http.ResponseController) error {
	if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("transport: flush: %w", err)
	}
	return nil
}

func trackStream() func() {
	observability.StreamingConnections.Inc()
	return observability.StreamingConnections.Dec
}

func countFragment(s *stream.Stream) {
	observability.FragmentsTotal.WithLabelValues(string(s.Kind())).Inc()
}
