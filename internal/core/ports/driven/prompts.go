package driven

// PromptStore provides access to prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// PromptAnswer wraps retrieved context and a question for an answering model.
// The template expects two %s placeholders: the formatted context, then the question.
const PromptAnswer = "answer"
