package usecase

import (
	"strings"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

// Keyword sets for question routing. A recognized game name forces the
// game_rules class even when the question also greets the bot, so the
// override rule runs first.
var (
	gameNames = []string{
		"battleship", "battleships", "chess", "monopoly",
		"reversi", "tictactoe", "tic-tac-toe",
	}
	conversationalPatterns = []string{
		"hello", "hi", "hey", "help", "can you", "what can you do",
		"who are you", "how do you", "thanks", "thank you", "bye",
	}
	platformPatterns = []string{
		"how to", "where", "find", "navigate", "use", "access",
		"menu", "search", "platform", "website", "guide",
	}
)

type classificationRule struct {
	name    string
	matches func(q normalizedQuestion) bool
	outcome domain.QueryClass
}

// Classifier routes a question to a retrieval strategy by evaluating a
// fixed rule table in priority order. Pure and stateless; it always
// returns a class, defaulting to game_rules.
type Classifier struct {
	rules []classificationRule
}

func NewClassifier() *Classifier {
	return &Classifier{
		rules: []classificationRule{
			{
				name:    "game_name_override",
				matches: func(q normalizedQuestion) bool { return q.containsAnySubstring(gameNames) },
				outcome: domain.ClassGameRules,
			},
			{
				name:    "conversational",
				matches: func(q normalizedQuestion) bool { return q.matchesAny(conversationalPatterns) },
				outcome: domain.ClassConversational,
			},
			{
				name:    "platform",
				matches: func(q normalizedQuestion) bool { return q.matchesAny(platformPatterns) },
				outcome: domain.ClassPlatform,
			},
		},
	}
}

func (c *Classifier) Classify(question string) domain.QueryClass {
	q := normalizeQuestion(question)
	for _, rule := range c.rules {
		if rule.matches(q) {
			return rule.outcome
		}
	}
	return domain.ClassGameRules
}

type normalizedQuestion struct {
	text   string
	tokens map[string]struct{}
}

func normalizeQuestion(question string) normalizedQuestion {
	text := strings.ToLower(strings.TrimSpace(question))
	text = strings.Trim(text, "?!., ")

	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	}) {
		tokens[tok] = struct{}{}
	}
	return normalizedQuestion{text: text, tokens: tokens}
}

// matchesAny tests multi-word patterns as substrings and single-word
// patterns against whole tokens, so "hi" does not fire inside "which".
func (q normalizedQuestion) matchesAny(patterns []string) bool {
	for _, p := range patterns {
		if strings.ContainsRune(p, ' ') {
			if strings.Contains(q.text, p) {
				return true
			}
			continue
		}
		if _, ok := q.tokens[p]; ok {
			return true
		}
	}
	return false
}

func (q normalizedQuestion) containsAnySubstring(patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(q.text, p) {
			return true
		}
	}
	return false
}
