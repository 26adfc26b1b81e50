package usecase

import (
	"testing"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier()

	cases := []struct {
		question string
		want     domain.QueryClass
	}{
		// Game name overrides everything else.
		{"hi, how do I play battleship?", domain.ClassGameRules},
		{"can you explain chess castling", domain.ClassGameRules},
		{"where is monopoly on the site", domain.ClassGameRules},
		{"tic-tac-toe rules", domain.ClassGameRules},

		// Conversational patterns.
		{"hello", domain.ClassConversational},
		{"Hello!", domain.ClassConversational},
		{"hey there", domain.ClassConversational},
		{"what can you do", domain.ClassConversational},
		{"thanks a lot", domain.ClassConversational},
		{"who are you?", domain.ClassConversational},

		// Platform patterns.
		{"how to change my password", domain.ClassPlatform},
		{"where is the leaderboard", domain.ClassPlatform},
		{"navigate to my profile", domain.ClassPlatform},
		{"is there a search feature on the website", domain.ClassPlatform},

		// Default class.
		{"what happens when both players tie", domain.ClassGameRules},
		{"explain the scoring system", domain.ClassGameRules},
	}

	for _, tc := range cases {
		if got := classifier.Classify(tc.question); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.question, got, tc.want)
		}
	}
}

func TestClassifySingleWordPatternsMatchWholeTokens(t *testing.T) {
	classifier := NewClassifier()

	// "hi" must not fire inside "which", nor "hey" inside "they".
	if got := classifier.Classify("which card wins a tie"); got != domain.ClassGameRules {
		t.Fatalf("Classify(which...) = %v, want game rules", got)
	}
	if got := classifier.Classify("do they swap turns after a capture"); got != domain.ClassGameRules {
		t.Fatalf("Classify(they...) = %v, want game rules", got)
	}
}

func TestClassifyNormalizesPunctuation(t *testing.T) {
	classifier := NewClassifier()
	if got := classifier.Classify("  HELLO?!  "); got != domain.ClassConversational {
		t.Fatalf("Classify(HELLO?!) = %v, want conversational", got)
	}
}
