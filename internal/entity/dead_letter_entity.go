package entity

import (
	"time"

	"github.com/google/uuid"
)

type DeadLetterJob struct {
	Id         uuid.UUID
	JobId      uuid.UUID
	WorkshopId uuid.UUID
	SessionId  string
	Payload    []byte
	Reason     string
	Attempts   int
	CreatedAt  time.Time
}
