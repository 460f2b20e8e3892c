package entity

import (
	"time"

	"github.com/google/uuid"
)

// Handoff lifecycle. A handoff is written once when a dialogue concludes and
// consumed once by the processing pipeline; the terminal status records how
// that run ended.
const (
	HandoffStatusPending    = "pending"
	HandoffStatusProcessed  = "processed"
	HandoffStatusNoKeywords = "no_keywords"
	HandoffStatusNoData     = "no_data"
)

// SummaryHandoff carries a concluded session's requirement summary from the
// dialogue side to the processing side.
type SummaryHandoff struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Summary       string
	Status        string
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
