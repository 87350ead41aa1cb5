package domain

// UIKind classifies a generated UI component.
type UIKind string

const (
	UIKindTodo      UIKind = "todo"
	UIKindButton    UIKind = "button"
	UIKindDashboard UIKind = "dashboard"
	UIKindNews      UIKind = "news"
	UIKindGeneral   UIKind = "general"
)

// UIKinds lists every valid UIKind in schema order.
var UIKinds = []UIKind{UIKindTodo, UIKindButton, UIKindDashboard, UIKindNews, UIKindGeneral}

// Valid reports whether k is a known kind.
func (k UIKind) Valid() bool {
	for _, known := range UIKinds {
		if k == known {
			return true
		}
	}
	return false
}

// UIComponent is the renderable part of a UIGenerationResult. Markup travels
// as "html" on the wire, which is what the embedding widget reads.
type UIComponent struct {
	Markup      string `json:"html"`
	Interactive bool   `json:"interactive"`
	Data        any    `json:"data,omitempty"`
}

// UIGenerationResult is the response of the structured UI generation endpoint.
type UIGenerationResult struct {
	Type    UIKind      `json:"type"`
	Content string      `json:"content"`
	UI      UIComponent `json:"ui"`
}
