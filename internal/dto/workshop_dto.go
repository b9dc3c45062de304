package dto

import (
	"time"

	"github.com/google/uuid"
)

type WorkshopQuestionResponse struct {
	Id       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

type ShowWorkshopResponse struct {
	Id                  uuid.UUID                  `json:"id"`
	Name                string                     `json:"name"`
	Slug                string                     `json:"slug"`
	Status              string                     `json:"status"`
	BoardId             string                     `json:"board_id"`
	Questions           []WorkshopQuestionResponse `json:"questions"`
	SimilarityThreshold float32                    `json:"similarity_threshold"`
	CreatedAt           time.Time                  `json:"created_at"`
}

type ThemeResponse struct {
	Id         uuid.UUID `json:"id"`
	Label      string    `json:"label"`
	Summary    string    `json:"summary,omitempty"`
	IdeaCount  int64     `json:"idea_count"`
	IsCatchAll bool      `json:"is_catch_all"`
	CreatedAt  time.Time `json:"created_at"`
}
