package domain

// Source is a citation-like reference attached to a ContextEnrichment.
type Source struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
	Kind      string  `json:"type"`
}

// ContextEnrichment is auxiliary knowledge merged into the instruction payload
// sent to a generation provider. The zero value is the empty enrichment.
type ContextEnrichment struct {
	ContextText   string   `json:"context"`
	Sources       []Source `json:"sources"`
	RelatedTopics []string `json:"relatedTopics"`
}

// Empty reports whether the enrichment carries no context text.
func (e ContextEnrichment) Empty() bool {
	return e.ContextText == ""
}

// SourceTitles returns the titles of all sources in order.
func (e ContextEnrichment) SourceTitles() []string {
	titles := make([]string, 0, len(e.Sources))
	for _, s := range e.Sources {
		titles = append(titles, s.Title)
	}
	return titles
}
