package model

import (
	"time"

	"github.com/google/uuid"
)

type ProcessedIdea struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobId         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"` // idempotency key, one row per queued job
	SessionId     string    `gorm:"type:varchar(100);not null;index"`
	WorkshopId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Nickname      string    `gorm:"type:varchar(100)"`
	QuestionId    *string   `gorm:"type:varchar(100)"`
	Title         string    `gorm:"type:varchar(255);not null"`
	CanonicalText string    `gorm:"type:text;not null"`
	Category      string    `gorm:"type:varchar(100);not null"`
	Sentiment     string    `gorm:"type:varchar(20)"`
	ThemeId       uuid.UUID `gorm:"type:uuid;not null;index"`
	CardRef       string    `gorm:"type:varchar(100);not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (ProcessedIdea) TableName() string {
	return "processed_ideas"
}
