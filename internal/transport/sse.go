package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"answer-gateway/internal/stream"
)

// WriteSSE writes one `data: {"text": ...}` event per fragment and a final
// `data: {"done":true}` event in place of relying on connection close.
func WriteSSE(w http.ResponseWriter, s *stream.Stream) error {
	defer trackStream()()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	for f := range s.Fragments() {
		var payload any = textEvent{Text: s.Text(f)}
		if f.Terminal {
			payload = doneEvent{Done: true}
		}
		if err := writeEvent(w, payload); err != nil {
			return err
		}
		if !f.Terminal {
			countFragment(s)
		}
		if err := flush(rc); err != nil {
			return err
		}
	}
	return nil
}

func writeEvent(w http.ResponseWriter, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("transport: marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("transport: write event: %w", err)
	}
	return nil
}
