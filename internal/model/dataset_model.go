package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Dataset struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"` // one dataset per session
	Keywords      datatypes.JSON `gorm:"type:jsonb"`
	Columns       datatypes.JSON `gorm:"type:jsonb;not null"`
	Rows          datatypes.JSON `gorm:"type:jsonb;not null"`
	GroundingText string         `gorm:"type:text"`
	TokenCount    int            `gorm:"not null;default:0"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (Dataset) TableName() string {
	return "datasets"
}
