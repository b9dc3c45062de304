package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published over the pipeline. Subscribers filter on these codes.
const (
	TypeIdeaSubmitted   = "idea_submitted"
	TypeIdeaProcessed   = "idea_processed"
	TypeProcessingError = "processing_error"
	TypeSessionUpdated  = "session_updated"
	TypeSessionExpired  = "session_expired"
)

// Event defines the contract for all pipeline events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "idea_processed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time

	// WorkshopID scopes the event to a workshop for room fan-out.
	WorkshopID() uuid.UUID
}

// BaseEvent is the concrete implementation shared by all constructors.
type BaseEvent struct {
	Type       string
	Workshop   uuid.UUID
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func (e BaseEvent) WorkshopID() uuid.UUID {
	return e.Workshop
}

func newEvent(eventType string, workshopID uuid.UUID, data map[string]interface{}) BaseEvent {
	now := time.Now().UTC()
	data["type"] = eventType
	data["workshop_id"] = workshopID.String()
	data["timestamp"] = now.Format(time.RFC3339Nano)
	return BaseEvent{
		Type:       eventType,
		Workshop:   workshopID,
		Data:       data,
		OccurredAt: now,
	}
}

// NewIdeaSubmitted fires when an idea is accepted at ingest, before any
// processing has happened.
func NewIdeaSubmitted(workshopID uuid.UUID, jobID uuid.UUID, sessionID string) Event {
	return newEvent(TypeIdeaSubmitted, workshopID, map[string]interface{}{
		"job_id":     jobID.String(),
		"session_id": sessionID,
	})
}

// NewIdeaProcessed fires when an idea has been enriched, clustered and posted.
func NewIdeaProcessed(workshopID uuid.UUID, sessionID string, ideaID, themeID uuid.UUID, title, category, cardRef string) Event {
	return newEvent(TypeIdeaProcessed, workshopID, map[string]interface{}{
		"session_id": sessionID,
		"idea_id":    ideaID.String(),
		"theme_id":   themeID.String(),
		"title":      title,
		"category":   category,
		"card_ref":   cardRef,
	})
}

// NewProcessingError fires when a job exhausts its attempts and is dead-lettered.
func NewProcessingError(workshopID uuid.UUID, jobID uuid.UUID, sessionID, reason string) Event {
	return newEvent(TypeProcessingError, workshopID, map[string]interface{}{
		"job_id":     jobID.String(),
		"session_id": sessionID,
		"error":      reason,
	})
}

// NewSessionUpdated fires after a session's idea counter changes.
func NewSessionUpdated(workshopID uuid.UUID, sessionID string, ideaCount int64) Event {
	return newEvent(TypeSessionUpdated, workshopID, map[string]interface{}{
		"session_id": sessionID,
		"idea_count": ideaCount,
	})
}

// NewSessionExpired fires when the idle sweeper flips a session to expired.
func NewSessionExpired(workshopID uuid.UUID, sessionID string) Event {
	return newEvent(TypeSessionExpired, workshopID, map[string]interface{}{
		"session_id": sessionID,
	})
}
