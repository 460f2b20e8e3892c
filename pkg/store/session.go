package store

import (
	"sync"

	"influencer-scout-be/pkg/llm"
)

// Session represents the active conversation state in memory.
// Turns is append-only within a session; a greeting reset truncates it
// before the greeting turn is appended.
type Session struct {
	ID   string `json:"id"` // ChatSessionID
	Mode string `json:"mode"`

	// Full retained history. The slice forwarded to the LLM may be a
	// bounded suffix of this.
	Turns []llm.Message `json:"turns"`

	// Rendered dataset text used to answer questions in GROUNDED mode.
	GroundingContext string `json:"grounding_context,omitempty"`

	// Outcome of the last pipeline run for this session
	// ("", "ok", "no_keywords", "no_data", "processing").
	PipelineStatus string `json:"pipeline_status,omitempty"`

	// Serializes turns: one in-flight completion per session.
	mu sync.Mutex
}

const (
	// Pipeline/session modes
	ModeQualifying = "QUALIFYING"
	ModeGrounded   = "GROUNDED"

	// Pipeline outcomes
	StatusProcessing = "processing"
	StatusOK         = "ok"
	StatusNoKeywords = "no_keywords"
	StatusNoData     = "no_data"
)

// Lock acquires the per-session turn lock. Concurrent turns on the same
// session would race on history append, so callers hold this for the full
// turn including the completion call.
func (s *Session) Lock() { s.mu.Lock() }

func (s *Session) Unlock() { s.mu.Unlock() }

// Reset discards all history and returns the session to qualifying mode.
func (s *Session) Reset() {
	s.Turns = nil
	s.Mode = ModeQualifying
	s.GroundingContext = ""
	s.PipelineStatus = ""
}

// Append adds a turn to the retained history.
func (s *Session) Append(role, content string) {
	s.Turns = append(s.Turns, llm.Message{Role: role, Content: content})
}

// UserTurns returns the user-authored turns in order.
func (s *Session) UserTurns() []string {
	var out []string
	for _, t := range s.Turns {
		if t.Role == llm.RoleUser {
			out = append(out, t.Content)
		}
	}
	return out
}

// BoundedHistory returns at most the maxTurns most recent turns, or the full
// history when maxTurns <= 0. The retained history is never truncated.
func (s *Session) BoundedHistory(maxTurns int) []llm.Message {
	if maxTurns <= 0 || len(s.Turns) <= maxTurns {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-maxTurns:]
}
