package stream

import (
	"context"
	"strings"
	"time"
)

// DefaultWordDelay approximates provider streaming cadence.
const DefaultWordDelay = 50 * time.Millisecond

// Simulated streams text word by word, waiting delay between words.
func Simulated(ctx context.Context, text string, delay time.Duration) *Stream {
	words := strings.Fields(text)
	var timer *time.Timer
	i := 0

	s := &Stream{
		ctx:    ctx,
		kind:   KindSimulated,
		joiner: " ",
		origin: "simulated",
		release: func() {
			if timer != nil {
				timer.Stop()
			}
		},
	}
	s.next = func() (string, bool) {
		if i >= len(words) || ctx.Err() != nil {
			return "", false
		}
		if i > 0 && delay > 0 {
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			select {
			case <-ctx.Done():
				return "", false
			case <-timer.C:
			}
		}
		w := words[i]
		i++
		return w, true
	}
	return s
}
