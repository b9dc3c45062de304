package entity

import (
	"time"

	"github.com/google/uuid"
)

type Theme struct {
	Id          uuid.UUID
	WorkshopId  uuid.UUID
	Label       string
	Summary     string
	Centroid    []float32
	SampleCount int
	IsCatchAll  bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
