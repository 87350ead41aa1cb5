package usecase

import "answer-gateway/internal/topic"

// chatFallback holds the canned one-paragraph answers served when no
// provider can stream the chat endpoint.
var chatFallback = topic.NewTable(
	"Research teams across multiple disciplines are uncovering fascinating connections between technology, society, and human behavior that continue to shape our understanding of modern life. "+
		"Scientists are employing interdisciplinary approaches to analyze both immediate effects and long-term societal trends, revealing complex patterns that require careful examination from multiple perspectives. "+
		"These investigations are providing crucial insights into how technological innovation, cultural shifts, and policy decisions interact in ways that fundamentally influence human development and social structures.",
	topic.Entry[string]{
		Keywords: []string{"ai", "artificial intelligence"},
		Value: "Researchers at leading AI laboratories have developed transformer models that demonstrate unprecedented capabilities in reasoning, creativity, and problem-solving, fundamentally changing how humans interact with artificial intelligence. " +
			"Recent studies show these large language models can process and generate text with remarkable sophistication, while new multimodal systems handle text, images, and audio with increasing accuracy. " +
			"However, scientists are now grappling with important questions about AI safety, bias, and societal impact as these systems become more powerful and widespread in everyday applications.",
	},
	topic.Entry[string]{
		Keywords: []string{"technology", "tech"},
		Value: "Scientists and engineers across the globe are pushing the boundaries of technological innovation at an unprecedented pace, with breakthroughs in quantum computing, biotechnology, and artificial intelligence reshaping entire industries. " +
			"Research teams have built cloud infrastructures that enable massive scalability and remote collaboration, while connected devices create networks where everyday objects share data in real time. " +
			"As our digital footprint expands, cybersecurity researchers are developing new protection methods and regulatory frameworks to safeguard user privacy without stalling technological progress.",
	},
	topic.Entry[string]{
		Keywords: []string{"chatbot", "chat", "bot"},
		Value: "Computational linguists and behavioral scientists have transformed simple rule-based chatbots into sophisticated conversational agents that use natural language processing to understand context and maintain coherent dialogue. " +
			"According to recent psychological research, companies now borrow techniques from behavioral science, including variable reward schedules and social validation, to keep users engaged. " +
			"This evolution raises critical questions about digital wellness and AI dependency, as studies suggest users may form parasocial relationships with chatbots that closely mimic human conversation.",
	},
)

// askFallback holds the canned sidebar answers for the single-question
// endpoint, biased toward the featured hominin study.
var askFallback = topic.NewTable(
	"Popular Science covers the discoveries reshaping how we see the world, from artificial intelligence to human evolution. "+
		"A recent standout: researchers at Spain's University of Alcalá used machine learning to show that tooth marks on Homo habilis fossils most likely came from an ancient leopard. "+
		"Ask about a topic and we'll dig into the science behind it.",
	topic.Entry[string]{
		Keywords: []string{"habilis", "hominin", "leopard", "evolution", "ancestor"},
		Value: "A team at Spain's University of Alcalá trained a machine learning model on nearly 1,500 photos of bite marks from modern carnivores, then used it to analyze tooth pits on two Homo habilis jaw fragments from Tanzania's Olduvai Gorge. " +
			"The verdict, with over 90 percent probability: an ancient leopard. " +
			"That suggests H. habilis, often seen as the first true human, was still more prey than predator about 2 million years ago.",
	},
)
