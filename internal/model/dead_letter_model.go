package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DeadLetterJob holds a job that exhausted its retries, kept for manual
// inspection rather than silently dropped.
type DeadLetterJob struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	JobId      uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	WorkshopId uuid.UUID      `gorm:"type:uuid;index"`
	SessionId  string         `gorm:"type:varchar(100);index"`
	Payload    datatypes.JSON `gorm:"type:jsonb"` // raw job as last seen on the queue
	Reason     string         `gorm:"type:text;not null"`
	Attempts   int            `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (DeadLetterJob) TableName() string {
	return "dead_letter_jobs"
}
