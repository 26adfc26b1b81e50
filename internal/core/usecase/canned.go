package usecase

import "strings"

// Canned replies for the non-retrieval paths. The variants mirror the
// assistant's conversational behavior: greeting, capability summary,
// thanks, and a generic default.

const greetingReply = `Hello! I'm your Game Rules Assistant. I can help you with:

1. Game Rules: Learn how to play various games
2. Platform Navigation: Find your way around
3. General Questions: Get help with using the platform

How can I assist you today?`

const helpReply = `I'd be happy to help! Here's what I can do:

1. Explain game rules in detail (e.g., "How do you play Battleship?")
2. Help navigate the platform (e.g., "How do I find a specific game?")
3. Answer questions about game setup and gameplay
4. Provide guidance on using the platform features

What would you like to know more about?`

const thanksReply = "You're welcome! Feel free to ask if you need anything else."

const defaultReply = `Hi there! I'm your Game Rules Assistant. I can help you with:

1. Learning game rules
2. Finding your way around the platform
3. Answering general questions

What would you like to know about?`

// fallbackReply is the user-facing text for any pipeline failure. It
// never leaks internal error detail.
const fallbackReply = "I'm here to help! Please feel free to ask about game rules or how to use the platform."

var (
	greetingTriggers = []string{"hello", "hi", "hey", "greetings"}
	helpTriggers     = []string{"help", "can you", "what can you do"}
)

func conversationalReply(question string) string {
	q := normalizeQuestion(question)
	switch {
	case q.matchesAny(greetingTriggers):
		return greetingReply
	case q.matchesAny(helpTriggers):
		return helpReply
	case strings.Contains(q.text, "thank"):
		return thanksReply
	default:
		return defaultReply
	}
}
