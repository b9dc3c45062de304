package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	WorkshopStatusActive   = "active"
	WorkshopStatusInactive = "inactive"
)

type WorkshopQuestion struct {
	Id       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

type Workshop struct {
	Id                  uuid.UUID
	Name                string
	Slug                string
	Status              string
	BoardId             string
	Questions           []WorkshopQuestion
	StyleRules          map[string]string // category -> fill color
	SimilarityThreshold float32
	CatchAllLabel       string
	RegionWidth         float64
	RegionHeight        float64
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

func (w *Workshop) IsActive() bool {
	return w.Status == WorkshopStatusActive
}
