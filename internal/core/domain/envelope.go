package domain

import (
	"fmt"
	"strings"
)

const (
	envelopeResponsePrefix = "Response: "
	envelopeSourcesMarker  = "\nSources: "
)

// Format renders the canonical two-line textual envelope:
//
//	Response: {text}
//	Sources: ['id1', 'id2']
//
// Sources are serialized as an ordered list because relevance order is
// meaningful. The envelope is an external representation for the CLI;
// inside the process the Answer value itself is passed around.
func (a *Answer) Format() string {
	quoted := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		quoted = append(quoted, "'"+s+"'")
	}
	return fmt.Sprintf("%s%s%s[%s]",
		envelopeResponsePrefix, a.Text, envelopeSourcesMarker, strings.Join(quoted, ", "))
}

// ParseAnswer recovers an Answer from its formatted envelope. The
// sources marker is located from the end because canned response text
// spans multiple lines.
func ParseAnswer(raw string) (*Answer, error) {
	if !strings.HasPrefix(raw, envelopeResponsePrefix) {
		return nil, fmt.Errorf("parse answer: missing %q prefix", strings.TrimSpace(envelopeResponsePrefix))
	}
	cut := strings.LastIndex(raw, envelopeSourcesMarker)
	if cut < 0 {
		return nil, fmt.Errorf("parse answer: missing sources line")
	}

	text := strings.TrimPrefix(raw[:cut], envelopeResponsePrefix)
	list := strings.TrimSpace(raw[cut+len(envelopeSourcesMarker):])
	if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
		return nil, fmt.Errorf("parse answer: sources %q is not a list", list)
	}

	inner := strings.TrimSpace(list[1 : len(list)-1])
	sources := []string{}
	if inner != "" {
		for _, item := range strings.Split(inner, ",") {
			sources = append(sources, strings.Trim(strings.TrimSpace(item), "'"))
		}
	}
	return &Answer{Text: text, Sources: sources}, nil
}
