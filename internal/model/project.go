package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultProjectColor is applied when a project is created without a color.
const DefaultProjectColor = "#3b82f6"

// Project groups tasks, members and reports under a single owner.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Color       string    `json:"color" gorm:"size:32;not null"`
	OwnerID     uuid.UUID `json:"ownerId" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Aggregates filled by list queries only.
	TaskCount   *int64 `json:"taskCount,omitempty" gorm:"->;-:migration"`
	MemberCount *int64 `json:"memberCount,omitempty" gorm:"->;-:migration"`

	// Relations
	Owner   *User    `json:"owner,omitempty" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Tasks   []Task   `json:"tasks,omitempty" gorm:"-"`
	Members []Member `json:"members,omitempty" gorm:"-"`
}

// BeforeCreate sets UUID and the default color before creating the record.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Color == "" {
		p.Color = DefaultProjectColor
	}
	return nil
}
