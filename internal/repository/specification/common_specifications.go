package specification

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by primary key
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByJobID filters by the queue job idempotency key
type ByJobID struct {
	JobID uuid.UUID
}

func (s ByJobID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("job_id = ?", s.JobID)
}

// ByWorkshopID scopes a query to one workshop
type ByWorkshopID struct {
	WorkshopID uuid.UUID
}

func (s ByWorkshopID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("workshop_id = ?", s.WorkshopID)
}

// ByThemeID scopes ideas to one theme
type ByThemeID struct {
	ThemeID uuid.UUID
}

func (s ByThemeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("theme_id = ?", s.ThemeID)
}

// BySessionID scopes a query to one participant session
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// BySlug filters workshops by their public slug
type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}

// CatchAllOnly narrows themes to the workshop's fallback cluster
type CatchAllOnly struct{}

func (s CatchAllOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_catch_all = ?", true)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}
