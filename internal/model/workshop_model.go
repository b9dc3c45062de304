package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Workshop struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                string         `gorm:"type:varchar(255);not null"`
	Slug                string         `gorm:"type:varchar(100);uniqueIndex;not null"`
	Status              string         `gorm:"type:varchar(20);not null;default:'active'"` // active | inactive
	BoardId             string         `gorm:"type:varchar(100);not null"`
	Questions           datatypes.JSON `gorm:"type:jsonb"` // [{id, text, category}]
	StyleRules          datatypes.JSON `gorm:"type:jsonb"` // {category -> fill color}
	SimilarityThreshold float32        `gorm:"type:real;not null;default:0.78"`
	CatchAllLabel       string         `gorm:"type:varchar(255)"`
	RegionWidth         float64        `gorm:"type:double precision;not null;default:300"`
	RegionHeight        float64        `gorm:"type:double precision;not null;default:600"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
}

func (Workshop) TableName() string {
	return "workshops"
}
