package domain

// QueryClass is the retrieval strategy chosen for a question.
type QueryClass string

const (
	ClassConversational QueryClass = "conversational"
	ClassPlatform       QueryClass = "platform"
	ClassGameRules      QueryClass = "game_rules"
)

// Collection returns the vector collection a classified question
// retrieves from. Conversational questions retrieve nothing.
func (c QueryClass) Collection() string {
	if c == ClassPlatform {
		return CollectionPlatformDocs
	}
	return CollectionGameRules
}

// RetrievedChunk is one similarity-search hit, relevance-ordered by
// the store.
type RetrievedChunk struct {
	ChunkID string  `json:"chunk_id"`
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Prompt is a fully assembled generation request: a persona and a
// grounded user message.
type Prompt struct {
	System string
	User   string
}

// Sentinel source tags. A one-element sentinel list, never an empty
// list, marks an answer that did not come from retrieved content, so
// consumers can tell "no grounding needed" from "grounding failed".
const (
	SourceConversational = "conversational"
	SourceNoResults      = "no_results"
	SourceSystemError    = "system_error"
)

// Answer is the response bundle for one question: generated or canned
// text plus the ordered chunk ids it was grounded on (or a sentinel).
type Answer struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}
