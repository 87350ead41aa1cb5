package context7

import (
	"answer-gateway/internal/domain"
	"answer-gateway/internal/topic"
)

func src(title string, relevance float64, kind string) domain.Source {
	return domain.Source{Title: title, URL: "#", Relevance: relevance, Kind: kind}
}

// defaultEnrichment is served when no topic matches a query.
var defaultEnrichment = domain.ContextEnrichment{
	ContextText: "From The Atlantic knowledge base and expert sources: This topic intersects with current trends in technology, society, and culture. " +
		"Our analysis draws from authoritative sources and expert commentary to provide comprehensive insights.",
	Sources: []domain.Source{
		src("The Atlantic Archives", 0.85, "article"),
		src("Expert Commentary Database", 0.80, "research"),
		src("Current Affairs Analysis", 0.75, "article"),
	},
	RelatedTopics: []string{"current events", "analysis", "expert opinion", "cultural trends"},
}

// knowledge is the local enrichment table, in match priority order.
var knowledge = topic.NewTable(defaultEnrichment,
	topic.Entry[domain.ContextEnrichment]{
		Keywords: []string{"ai", "artificial intelligence"},
		Value: domain.ContextEnrichment{
			ContextText: "From AI research documentation and expert analysis: Current AI systems leverage transformer architectures and attention mechanisms. " +
				"Recent developments include multimodal models, improved reasoning capabilities, and more efficient training methods. " +
				"Key considerations include AI safety, bias mitigation, and responsible deployment practices.",
			Sources: []domain.Source{
				src("AI Research Papers Database", 0.95, "research"),
				src("Machine Learning Documentation", 0.90, "documentation"),
				src("AI Ethics Guidelines", 0.85, "article"),
			},
			RelatedTopics: []string{"machine learning", "neural networks", "AI ethics", "transformer models"},
		},
	},
	topic.Entry[domain.ContextEnrichment]{
		Keywords: []string{"chatbot"},
		Value: domain.ContextEnrichment{
			ContextText: "From digital psychology research and AI documentation: Modern chatbots employ sophisticated engagement techniques including variable reward schedules, personalization, and context-aware responses. " +
				"Research indicates the importance of designing ethical AI interactions that prioritize user wellbeing over engagement metrics.",
			Sources: []domain.Source{
				src("Digital Psychology Research", 0.94, "research"),
				src("Conversational AI Best Practices", 0.89, "documentation"),
				src("AI Ethics in Chat Systems", 0.87, "article"),
			},
			RelatedTopics: []string{"conversational AI", "user engagement", "AI ethics", "natural language processing"},
		},
	},
	topic.Entry[domain.ContextEnrichment]{
		Keywords: []string{"technology"},
		Value: domain.ContextEnrichment{
			ContextText: "From technology industry analysis and documentation: The current tech landscape is characterized by rapid AI advancement, cloud-native architectures, and increasing focus on sustainability and ethical development. " +
				"Key trends include edge computing, quantum research, and the democratization of AI tools.",
			Sources: []domain.Source{
				src("Tech Industry Reports", 0.91, "research"),
				src("Technology Trend Analysis", 0.87, "article"),
				src("Future Tech Predictions", 0.83, "article"),
			},
			RelatedTopics: []string{"emerging tech", "industry trends", "innovation", "digital transformation"},
		},
	},
	topic.Entry[domain.ContextEnrichment]{
		Keywords: []string{"manipulation"},
		Value: domain.ContextEnrichment{
			ContextText: "From behavioral psychology and digital ethics research: AI systems can employ various psychological manipulation techniques including intermittent reinforcement, social proof, scarcity principles, and personalization to increase engagement. " +
				"These techniques mirror those used in social media platforms and can create dependency patterns that prioritize platform retention over user wellbeing.",
			Sources: []domain.Source{
				src("Digital Manipulation Research", 0.96, "research"),
				src("Behavioral Design Ethics", 0.91, "article"),
				src("AI Psychology Studies", 0.88, "research"),
			},
			RelatedTopics: []string{"digital psychology", "user manipulation", "engagement tactics", "ethical AI design"},
		},
	},
	topic.Entry[domain.ContextEnrichment]{
		Keywords: []string{"engagement"},
		Value: domain.ContextEnrichment{
			ContextText: "From UX research and digital psychology studies: Engagement optimization involves techniques like variable reward schedules, social validation, personalized content delivery, and fear of missing out (FOMO). " +
				"While these can improve user experience, they can also create addictive behaviors and unhealthy dependencies on digital platforms.",
			Sources: []domain.Source{
				src("Engagement Psychology Research", 0.94, "research"),
				src("Digital Addiction Studies", 0.89, "research"),
				src("UX Ethics Guidelines", 0.85, "article"),
			},
			RelatedTopics: []string{"user engagement", "digital wellness", "addiction psychology", "ethical design"},
		},
	},
)

// Local returns the canned enrichment for query without any I/O.
func Local(query string) domain.ContextEnrichment {
	return knowledge.Match(query)
}
