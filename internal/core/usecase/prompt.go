package usecase

import (
	"fmt"
	"strings"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

const contextSeparator = "\n\n---\n\n"

var personas = map[domain.QueryClass]string{
	domain.ClassGameRules: "You are a helpful assistant explaining game rules clearly and concisely.",
	domain.ClassPlatform:  "You are a helpful platform guide providing clear navigation assistance.",
}

// buildPrompt assembles the grounded generation request: retrieved
// chunk texts joined by the fixed separator, a persona keyed by the
// question class, and an instruction that constrains the model to the
// supplied context. Deterministic given identical inputs.
func buildPrompt(question string, class domain.QueryClass, chunks []domain.RetrievedChunk) domain.Prompt {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	persona, ok := personas[class]
	if !ok {
		persona = personas[domain.ClassGameRules]
	}

	return domain.Prompt{
		System: persona,
		User: fmt.Sprintf(
			"Answer the question based only on the following context:\n\nContext:\n%s\n\n---\n\nQuestion: %s\n",
			strings.Join(texts, contextSeparator),
			question,
		),
	}
}
