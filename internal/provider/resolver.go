// Package provider decides which generation backend, if any, serves a request.
package provider

import (
	"fmt"
	"strings"
)

// ID names a supported generation provider.
type ID string

const (
	OpenAI    ID = "openai"
	Anthropic ID = "anthropic"
)

// priority is the order used when no usable preference is configured.
var priority = []ID{OpenAI, Anthropic}

// ParseID validates a provider name. The empty string yields "" and no error.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	if id == "" {
		return "", nil
	}
	for _, known := range priority {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("provider: unknown provider %q", s)
}

// Purpose selects which configured model a handle carries.
type Purpose int

const (
	PurposeText Purpose = iota
	PurposeStructured
)

// Models holds the model identifiers of one provider.
type Models struct {
	Text       string
	Structured string
}

func (m Models) forPurpose(p Purpose) string {
	if p == PurposeStructured && m.Structured != "" {
		return m.Structured
	}
	return m.Text
}

// Settings is the read-only provider configuration resolved at startup.
type Settings struct {
	Preferred   ID
	Credentials map[ID]string
	Models      map[ID]Models
}

// Configured reports whether any provider credential is present.
func (s Settings) Configured() bool {
	_, ok := Resolve(s, PurposeText)
	return ok
}

func (s Settings) hasCredential(id ID) bool {
	return strings.TrimSpace(s.Credentials[id]) != ""
}

// Handle references a usable provider and model. It is immutable.
type Handle struct {
	Provider ID
	Model    string
}

func (h Handle) String() string {
	return string(h.Provider) + "/" + h.Model
}

// Resolve picks the provider for a request. The preferred provider wins when
// its credential is present; otherwise the first provider in priority order
// with a credential is used. ok is false when no provider is usable.
func Resolve(s Settings, purpose Purpose) (h Handle, ok bool) {
	if s.Preferred != "" && s.hasCredential(s.Preferred) {
		return s.handle(s.Preferred, purpose), true
	}
	for _, id := range priority {
		if s.hasCredential(id) {
			return s.handle(id, purpose), true
		}
	}
	return Handle{}, false
}

func (s Settings) handle(id ID, purpose Purpose) Handle {
	return Handle{Provider: id, Model: s.Models[id].forPurpose(purpose)}
}
