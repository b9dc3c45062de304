package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Theme struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WorkshopId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Label       string          `gorm:"type:varchar(255);not null"`
	Summary     string          `gorm:"type:text"` // representative text of the cluster
	Centroid    pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic dimensions
	SampleCount int             `gorm:"not null;default:0"`
	IsCatchAll  bool            `gorm:"not null;default:false;index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (Theme) TableName() string {
	return "themes"
}
