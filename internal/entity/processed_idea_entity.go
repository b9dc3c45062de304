package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProcessedIdea struct {
	Id            uuid.UUID
	JobId         uuid.UUID
	SessionId     string
	WorkshopId    uuid.UUID
	Nickname      string
	QuestionId    *string
	Title         string
	CanonicalText string
	Category      string
	Sentiment     string
	ThemeId       uuid.UUID
	CardRef       string
	CreatedAt     time.Time
}
