package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session modes. A session starts QUALIFYING and flips to GROUNDED once a
// dataset has been attached to it.
const (
	SessionModeQualifying = "QUALIFYING"
	SessionModeGrounded   = "GROUNDED"
)

type ChatSession struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Title          string
	Mode           string
	PipelineStatus string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
