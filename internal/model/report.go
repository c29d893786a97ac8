package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportType classifies a report.
type ReportType string

const (
	ReportTypeNote    ReportType = "note"
	ReportTypeReport  ReportType = "report"
	ReportTypeComment ReportType = "comment"
	ReportTypeReview  ReportType = "review"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeNote, ReportTypeReport, ReportTypeComment, ReportTypeReview:
		return true
	}
	return false
}

// ReportStatus is the publication state of a report.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusPublished ReportStatus = "published"
	ReportStatusArchived  ReportStatus = "archived"
)

// Valid reports whether s is a known report status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusPublished, ReportStatusArchived:
		return true
	}
	return false
}

// Report is a free-text note attached to a project.
type Report struct {
	ID        uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	Title     string       `json:"title" gorm:"size:255;not null"`
	Content   string       `json:"content" gorm:"type:text;not null"`
	Type      ReportType   `json:"type" gorm:"size:16;not null;default:'note';index"`
	Status    ReportStatus `json:"status" gorm:"size:16;not null;default:'draft';index"`
	ProjectID uuid.UUID    `json:"projectId" gorm:"type:char(36);not null;index"`
	AuthorID  uuid.UUID    `json:"authorId" gorm:"type:char(36);not null;index"`
	Tags      []string     `json:"tags" gorm:"serializer:json"`
	CreatedAt time.Time    `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time    `json:"updatedAt"`

	// Relations
	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Author  *User    `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID and defaults before creating the record.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Type == "" {
		r.Type = ReportTypeNote
	}
	if r.Status == "" {
		r.Status = ReportStatusDraft
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return nil
}
