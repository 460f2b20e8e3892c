package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SummaryHandoff struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Summary       string         `gorm:"type:text;not null"`
	Status        string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	ProcessedAt   *time.Time
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (SummaryHandoff) TableName() string {
	return "summary_handoffs"
}
