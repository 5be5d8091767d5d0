package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Job struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	Subjects        string     `gorm:"type:text" json:"subjects"`
	Location        *string    `gorm:"size:255" json:"location"`
	HoursPerWeek    *int       `json:"hours_per_week"`
	Budget          *string    `gorm:"size:100" json:"budget"`
	Status          JobStatus  `gorm:"size:20;not null;default:'open';index" json:"status"`
	AssignedTutorID *uuid.UUID `gorm:"type:uuid" json:"assigned_tutor_id"`
	AssignedBidID   *uuid.UUID `gorm:"type:uuid" json:"assigned_bid_id"`

	Student *User `gorm:"foreignKey:StudentID;constraint:OnDelete:RESTRICT" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobOpen
	}
	return nil
}

func (j *Job) CanAcceptBids() bool {
	return j.Status == JobOpen
}

func (j *Job) CanEdit() bool {
	return j.Status == JobOpen
}

func (j *Job) CanComplete() bool {
	return j.Status == JobAssigned
}

func (j *Job) CanCancel() bool {
	return j.Status == JobOpen || j.Status == JobAssigned
}

func (j *Job) IsOwnedBy(userID uuid.UUID) bool {
	return j.StudentID == userID
}
