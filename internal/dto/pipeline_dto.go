package dto

import (
	"time"

	"github.com/google/uuid"
)

// PublishProcessMessage is the in-process bus payload that hands a
// concluded session to the pipeline consumer.
type PublishProcessMessage struct {
	SessionId uuid.UUID `json:"session_id"`
}

type ProcessRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
}

type ProcessResponse struct {
	SessionId  uuid.UUID `json:"session_id"`
	Status     string    `json:"status"`
	Keywords   []string  `json:"keywords,omitempty"`
	Records    int       `json:"records"`
	TokenCount int       `json:"token_count"`
}

type DatasetResponse struct {
	SessionId  uuid.UUID        `json:"session_id"`
	Keywords   []string         `json:"keywords"`
	Columns    []string         `json:"columns"`
	Rows       []map[string]any `json:"rows"`
	TokenCount int              `json:"token_count"`
	CreatedAt  time.Time        `json:"created_at"`
}
