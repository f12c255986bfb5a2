package conversation

import (
	"time"

	"github.com/workforce-tools/tasq/internal/insights"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Turn is one message in a session. Immutable once appended; assistant turns
// carry the utterance that produced them (Prompt) plus the generated query,
// row count and insight so later turns can resolve references against them.
type Turn struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Text      string            `json:"text"`
	Prompt    string            `json:"prompt,omitempty"`
	Query     string            `json:"query,omitempty"`
	RowCount  int               `json:"row_count,omitempty"`
	Insight   *insights.Insight `json:"insight,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
