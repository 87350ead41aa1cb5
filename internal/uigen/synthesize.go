package uigen

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"answer-gateway/internal/domain"
	"answer-gateway/internal/topic"
)

var kinds = topic.NewTable(domain.UIKindGeneral,
	topic.Entry[domain.UIKind]{Keywords: []string{"todo", "task", "list"}, Value: domain.UIKindTodo},
	topic.Entry[domain.UIKind]{Keywords: []string{"button", "component"}, Value: domain.UIKindButton},
	topic.Entry[domain.UIKind]{Keywords: []string{"dashboard", "analytics"}, Value: domain.UIKindDashboard},
	topic.Entry[domain.UIKind]{Keywords: []string{"news", "tech", "technology"}, Value: domain.UIKindNews},
)

// Classify picks a UI kind for prompt. hint is used only when no keyword
// matches and it names a known kind.
func Classify(prompt, hint string) domain.UIKind {
	if k, ok := kinds.Lookup(prompt); ok {
		return k
	}
	if h := domain.UIKind(strings.ToLower(strings.TrimSpace(hint))); h.Valid() {
		return h
	}
	return domain.UIKindGeneral
}

// DashboardMetrics are the randomized figures of the dashboard template.
type DashboardMetrics struct {
	ActiveUsers int     `json:"activeUsers"`
	Uptime      float64 `json:"uptime"`
	Revenue     float64 `json:"revenue"`
	Conversions int     `json:"conversions"`
}

// Synthesizer builds fixed-template results. It is safe for concurrent use.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer returns a Synthesizer drawing dashboard figures from rng.
// A nil rng uses a randomly seeded source.
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Synthesizer{rng: rng}
}

// Synthesize returns the template result for the kind Classify selects.
func (s *Synthesizer) Synthesize(prompt, hint string) domain.UIGenerationResult {
	switch Classify(prompt, hint) {
	case domain.UIKindTodo:
		return todoResult()
	case domain.UIKindButton:
		return buttonResult()
	case domain.UIKindDashboard:
		return dashboardResult(s.metrics())
	case domain.UIKindNews:
		return newsResult()
	default:
		return generalResult(prompt)
	}
}

func (s *Synthesizer) metrics() DashboardMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DashboardMetrics{
		ActiveUsers: 2000 + s.rng.IntN(1000),
		Uptime:      oneDecimal(99 + s.rng.Float64()),
		Revenue:     oneDecimal(10 + s.rng.Float64()*20),
		Conversions: 100 + s.rng.IntN(200),
	}
}

func oneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

var todoItems = []string{
	"Complete project documentation",
	"Review code changes",
	"Deploy to production",
	"Update team documentation",
}

func todoResult() domain.UIGenerationResult {
	var b strings.Builder
	b.WriteString(`<div class="generated-ui-card"><h4>📝 AI-Generated Tasks</h4><ul class="generated-todo-list">`)
	for i, item := range todoItems {
		fmt.Fprintf(&b, `<li class="generated-todo-item"><div class="todo-checkbox" data-task="%d"></div><span>%s</span></li>`, i, item)
	}
	b.WriteString(`</ul><button class="generated-button" onclick="this.parentElement.querySelector('.generated-todo-list').insertAdjacentHTML('beforeend', '<li class=&quot;generated-todo-item&quot;><div class=&quot;todo-checkbox&quot;></div><span>New task</span></li>')">➕ Add Task</button></div>`)

	return domain.UIGenerationResult{
		Type:    domain.UIKindTodo,
		Content: "I've created a customizable todo list for you:",
		UI: domain.UIComponent{
			Markup:      b.String(),
			Interactive: true,
			Data:        map[string]any{"items": todoItems},
		},
	}
}

func buttonResult() domain.UIGenerationResult {
	return domain.UIGenerationResult{
		Type:    domain.UIKindButton,
		Content: "I've created an interactive button component:",
		UI: domain.UIComponent{
			Markup: `<div class="generated-ui-card"><p>Interactive AI-generated button:</p>` +
				`<button class="generated-button" onclick="this.textContent = this.textContent.includes('🚀') ? '✅ Action Complete!' : '🚀 Launch Action';">🚀 Launch Action</button>` +
				`<p>Click to see the button change state</p></div>`,
			Interactive: true,
			Data:        map[string]any{"action": "launch"},
		},
	}
}

func dashboardResult(m DashboardMetrics) domain.UIGenerationResult {
	cards := []struct{ value, label string }{
		{fmt.Sprintf("%d", m.ActiveUsers), "Active Users"},
		{fmt.Sprintf("%.1f%%", m.Uptime), "Uptime"},
		{fmt.Sprintf("$%.1fK", m.Revenue), "Revenue"},
		{fmt.Sprintf("%d", m.Conversions), "Conversions"},
	}
	var b strings.Builder
	b.WriteString(`<div class="generated-ui-card"><h4>📊 Real-Time Analytics</h4><div class="generated-dashboard">`)
	for _, c := range cards {
		fmt.Fprintf(&b, `<div class="dashboard-card"><div class="dashboard-number">%s</div><div class="dashboard-label">%s</div></div>`, c.value, c.label)
	}
	b.WriteString(`</div><button class="generated-button" onclick="location.reload();">🔄 Refresh Data</button></div>`)

	return domain.UIGenerationResult{
		Type:    domain.UIKindDashboard,
		Content: "Here's a real-time analytics dashboard:",
		UI: domain.UIComponent{
			Markup:      b.String(),
			Interactive: true,
			Data:        map[string]any{"metrics": m},
		},
	}
}

var headlines = []struct{ headline, summary, source, age string }{
	{
		"🚀 Generative UI Reaches Everyday Web Development",
		"New generative UI capabilities let developers build dynamic interfaces from simple prompts.",
		"TechCrunch", "2 hours ago",
	},
	{
		"💻 Frameworks Add First-Class AI Streaming",
		"Real-time UI generation and streaming responses are becoming a built-in feature of web frameworks.",
		"The Verge", "4 hours ago",
	},
}

func newsResult() domain.UIGenerationResult {
	var b strings.Builder
	for _, h := range headlines {
		fmt.Fprintf(&b, `<div class="generated-news-article"><div class="news-headline">%s</div><div class="news-summary">%s</div><div class="news-source">%s • %s</div></div>`,
			h.headline, h.summary, h.source, h.age)
	}
	return domain.UIGenerationResult{
		Type:    domain.UIKindNews,
		Content: "Here are the latest tech news updates:",
		UI: domain.UIComponent{
			Markup:      b.String(),
			Interactive: false,
			Data:        map[string]any{"source": "real-time"},
		},
	}
}

func generalResult(prompt string) domain.UIGenerationResult {
	return domain.UIGenerationResult{
		Type:    domain.UIKindGeneral,
		Content: fmt.Sprintf("Here's what I generated for %q:", prompt),
		UI: domain.UIComponent{
			Markup: `<div class="generated-ui-card"><p>✅ UI generation is running in local mode.</p>` +
				`<p>Try asking for specific UI components like "create a todo list", "show dashboard", or "design a button".</p></div>`,
			Interactive: false,
			Data:        map[string]any{"type": "status", "status": "local"},
		},
	}
}
