package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	TutorID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tutor_id"`
	JobID     *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"job_id"`
	Rating    int        `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string     `gorm:"type:text" json:"comment"`

	Student *User `gorm:"foreignKey:StudentID;constraint:OnDelete:RESTRICT" json:"student,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
