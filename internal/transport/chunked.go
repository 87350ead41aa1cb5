package transport

import (
	"fmt"
	"io"
	"net/http"

	"answer-gateway/internal/stream"
)

// WriteChunked writes fragments as raw text over a chunked response, one
// write and flush per fragment. The response ends after the terminal fragment.
func WriteChunked(w http.ResponseWriter, s *stream.Stream) error {
	defer trackStream()()

	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	for f := range s.Fragments() {
		if f.Terminal {
			break
		}
		if _, err := io.WriteString(w, s.Text(f)); err != nil {
			return fmt.Errorf("transport: write chunk: %w", err)
		}
		countFragment(s)
		if err := flush(rc); err != nil {
			return err
		}
	}
	return nil
}
