package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
)

// routingFile is the on-disk shape of the content-root → collection
// mapping. Routing is configured explicitly here instead of being
// inferred from substrings of source paths, so renaming a content
// directory is a config change, not silent misrouting.
type routingFile struct {
	Rules []domain.RoutingRule `yaml:"rules"`
}

// LoadRouting reads the routing map from path. A missing file yields
// the default mapping; a present but invalid file is an error.
func LoadRouting(path string) ([]domain.RoutingRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultRouting(), nil
		}
		return nil, fmt.Errorf("read routing map: %w", err)
	}

	var file routingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse routing map: %w", err)
	}
	if len(file.Rules) == 0 {
		return DefaultRouting(), nil
	}
	for _, rule := range file.Rules {
		if rule.Root == "" || rule.Collection == "" {
			return nil, fmt.Errorf("routing map: rule with empty root or collection")
		}
	}
	return file.Rules, nil
}

func DefaultRouting() []domain.RoutingRule {
	return []domain.RoutingRule{
		{Root: "game_rules", Collection: domain.CollectionGameRules},
		{Root: "platform_docs", Collection: domain.CollectionPlatformDocs},
		{Root: "faqs", Collection: domain.CollectionFAQs},
	}
}
