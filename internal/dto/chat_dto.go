package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type CreateSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatTurnRequest carries one user message. Message is deliberately not
// validated as required: empty and whitespace-only input get the machine's
// fixed invalid-input reply rather than a validation error.
type ChatTurnRequest struct {
	Message string `json:"message"`
}

type ChatTurnResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Reply     string    `json:"reply"`
	Mode      string    `json:"mode"`
	Concluded bool      `json:"concluded"`
	// ProcessReady tells the client the reply carries a summary and the
	// processing call can be offered.
	ProcessReady bool `json:"process_ready"`
}

type ChatHistoryItem struct {
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatHistoryResponse struct {
	SessionId uuid.UUID         `json:"session_id"`
	Messages  []ChatHistoryItem `json:"messages"`
}

type SessionStatusResponse struct {
	SessionId      uuid.UUID `json:"session_id"`
	Mode           string    `json:"mode"`
	PipelineStatus string    `json:"pipeline_status,omitempty"`
	HandoffStatus  string    `json:"handoff_status,omitempty"`
}
