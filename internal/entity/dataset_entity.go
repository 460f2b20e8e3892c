package entity

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is the normalized creator table produced by one pipeline run.
// A session holds at most one dataset; reprocessing overwrites it.
type Dataset struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Keywords      []string
	Columns       []string
	Rows          []map[string]any
	GroundingText string
	TokenCount    int
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
