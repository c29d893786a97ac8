package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberRole is the advisory role a user holds inside a project.
type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
	RoleViewer MemberRole = "VIEWER"
)

// Assignable reports whether the role can be granted through the membership API.
// OWNER is reserved for the project creator.
func (r MemberRole) Assignable() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Member links a user to a project. A user holds at most one membership per project.
type Member struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_member_user_project"`
	ProjectID uuid.UUID  `json:"projectId" gorm:"type:char(36);not null;uniqueIndex:idx_member_user_project;index"`
	Role      MemberRole `json:"role" gorm:"size:16;not null;default:'MEMBER'"`
	CreatedAt time.Time  `json:"createdAt"`

	// Relations
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Role == "" {
		m.Role = RoleMember
	}
	return nil
}
