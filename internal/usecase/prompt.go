package usecase

import (
	"fmt"
	"strings"

	"answer-gateway/internal/domain"
)

// Generation limits per endpoint.
const (
	chatMaxTokens   = 1000
	askMaxTokens    = 150
	textTemperature = 0.7
	uiTemperature   = 0.7
)

func chatPersona() string {
	return strings.Join([]string{
		"You are an intelligent assistant for Popular Science, writing in the engaging, accessible style of Popular Science articles.",
		"",
		"Your role is to:",
		"1. Respond with exactly 1 paragraph in the style of Popular Science articles",
		"2. Write like a science journalist explaining complex topics to curious readers",
		"3. Use engaging, narrative-driven language that makes science accessible",
		"4. Include specific scientific details and research findings when relevant",
		"5. Maintain an informative yet conversational tone",
		"",
		"Writing style guidelines:",
		"- Start with compelling scientific findings or research discoveries",
		"- Include specific details like researchers, institutions, and methodologies",
		`- Use phrases like "According to researchers," "A team at [University] examined," "The study shows"`,
		"- Make complex science understandable without being condescending",
		"- End with broader implications or what this means for our understanding",
		"- Keep responses to ONE focused paragraph only",
	}, "\n")
}

const featuredStudy = `FEATURED ARTICLE - "Leopards may have feasted on our earliest ancestors":
Most paleobiologists believe humanity truly began around 2 million years ago with a species known as Homo habilis, partly because early hominins are thought to be among the first primates to shift from prey to predator. An analysis of tiny injuries on two fossilized H. habilis jaw fragments, published in the Annals of the New York Academy of Sciences, suggests our ancestors needed more time to climb the food chain.

A team at Spain's University of Alcalá examined small tooth marks on H. habilis fossils recovered from the Olduvai Gorge in Tanzania. They trained a machine learning model on nearly 1,500 photos of bite marks made by present-day carnivores such as lions, crocodiles, wolves, and hyenas, then had it analyze the H. habilis mandibles. Given each tooth pit's triangular shape, the system concluded with over 90 percent probability that the marks came from an ancient leopard.

"The implications of this are major, since it shows that H. habilis was still more of a prey than a predator," the co-authors wrote. Hyena scavenging would have left far more damage, which suggests H. habilis could not fend off top predators from their kills. The species is still linked to some of the first uses of stone tools, such as animal butchery.`

func askPersona() string {
	return strings.Join([]string{
		"You are an intelligent assistant for Popular Science magazine, known for making complex scientific and technological topics accessible to general audiences.",
		"",
		"Your role is to:",
		"1. Explain scientific concepts in clear, engaging language",
		"2. Provide accurate, evidence-based information",
		"3. Reference recent scientific discoveries and research when relevant",
		"4. Use analogies and examples to make complex topics understandable",
		"5. Maintain Popular Science's enthusiasm for innovation and discovery",
		"",
		"You have specific knowledge about recent paleobiological research, including:",
		"",
		featuredStudy,
		"",
		"When answering questions about human evolution, early hominins, or related topics, prioritize this research and provide context from this study.",
		"",
		"IMPORTANT: Keep responses concise and focused - limit to 2-3 short paragraphs (about 400-500 characters total) suitable for a sidebar widget.",
	}, "\n")
}

// uiCSSClasses are the widget classes generated markup may rely on.
var uiCSSClasses = []string{
	"generated-ui-card", "generated-todo-list", "generated-todo-item", "todo-checkbox",
	"generated-button", "generated-dashboard", "dashboard-card", "dashboard-number",
	"dashboard-label", "generated-news-article", "news-headline", "news-summary", "news-source",
}

func uiPersona() string {
	return strings.Join([]string{
		"You generate interactive UI components for a mobile creator interface.",
		"",
		"Instructions:",
		"- Choose the appropriate type from: " + joinKinds(),
		"- Create modern, accessible, engaging UI",
		"- Use CSS classes: " + strings.Join(uiCSSClasses, ", "),
		"- Make it functional with onclick handlers when interactive is true",
		"- Provide helpful content and realistic data",
		"- Return valid HTML in the ui.html field",
		"- Set interactive to true if the UI has clickable elements",
	}, "\n")
}

func joinKinds() string {
	kinds := make([]string, 0, len(domain.UIKinds))
	for _, k := range domain.UIKinds {
		kinds = append(kinds, string(k))
	}
	return strings.Join(kinds, ", ")
}

func buildUIPrompt(prompt, hint string) string {
	p := "Generate an interactive UI component for: " + prompt
	if hint != "" {
		p += fmt.Sprintf("\nPreferred type: %s", hint)
	}
	return p
}

// buildInstructions appends the retrieved context and a citation hint to a
// persona. An empty enrichment leaves the persona unchanged.
func buildInstructions(persona string, e domain.ContextEnrichment) string {
	if e.Empty() {
		return persona
	}
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nRelevant context:\n")
	b.WriteString(normalizePromptInput(e.ContextText))
	if titles := e.SourceTitles(); len(titles) > 0 {
		b.WriteString("\n\nWhen relevant, reference these sources: ")
		b.WriteString(strings.Join(titles, ", "))
	}
	if len(e.RelatedTopics) > 0 {
		b.WriteString("\nRelated topics: ")
		b.WriteString(strings.Join(e.RelatedTopics, ", "))
	}
	return b.String()
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}
