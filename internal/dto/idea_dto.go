package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitIdeaRequest struct {
	WorkshopId uuid.UUID `json:"workshop_id" validate:"required"`
	SessionId  string    `json:"session_id" validate:"required"`
	Nickname   string    `json:"nickname"`
	QuestionId *string   `json:"question_id"`
	Transcript string    `json:"transcript" validate:"required"`
}

type SubmitIdeaResponse struct {
	JobId  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

type QueueStatusResponse struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Delayed    int64 `json:"delayed"`
	Dead       int64 `json:"dead"`
}

type IdeaResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId string    `json:"session_id"`
	Nickname  string    `json:"nickname,omitempty"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Sentiment string    `json:"sentiment"`
	ThemeId   uuid.UUID `json:"theme_id"`
	CardRef   string    `json:"card_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type DeadLetterResponse struct {
	JobId     uuid.UUID `json:"job_id"`
	SessionId string    `json:"session_id"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
}
