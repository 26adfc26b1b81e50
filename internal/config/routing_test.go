package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

func TestLoadRoutingMissingFileUsesDefaults(t *testing.T) {
	rules, err := LoadRouting(filepath.Join(t.TempDir(), "routing.yaml"))
	if err != nil {
		t.Fatalf("LoadRouting() error = %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("rules = %d, want 3", len(rules))
	}
	if rules[0].Root != "game_rules" || rules[0].Collection != domain.CollectionGameRules {
		t.Fatalf("first rule = %+v", rules[0])
	}
}

func TestLoadRoutingFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	content := `rules:
  - root: games
    collection: game_rules
  - root: platform
    collection: platform_docs
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write routing map: %v", err)
	}

	rules, err := LoadRouting(path)
	if err != nil {
		t.Fatalf("LoadRouting() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}
	if rules[0].Root != "games" || rules[0].Collection != domain.CollectionGameRules {
		t.Fatalf("first rule = %+v", rules[0])
	}
}

func TestLoadRoutingInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte("rules: [not closed"), 0o644); err != nil {
		t.Fatalf("write routing map: %v", err)
	}
	if _, err := LoadRouting(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRoutingRejectsEmptyFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	content := `rules:
  - root: ""
    collection: game_rules
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write routing map: %v", err)
	}
	if _, err := LoadRouting(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRoutingEmptyRulesUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte("rules: []\n"), 0o644); err != nil {
		t.Fatalf("write routing map: %v", err)
	}
	rules, err := LoadRouting(path)
	if err != nil {
		t.Fatalf("LoadRouting() error = %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("rules = %d, want defaults", len(rules))
	}
}
