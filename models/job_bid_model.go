package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobBid struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_bids_job_tutor" json:"job_id"`
	TutorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_bids_job_tutor;index" json:"tutor_id"`
	Amount  float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Message string    `gorm:"type:text" json:"message"`
	Status  BidStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`

	Job   *Job  `gorm:"foreignKey:JobID;constraint:OnDelete:RESTRICT" json:"job,omitempty"`
	Tutor *User `gorm:"foreignKey:TutorID;constraint:OnDelete:RESTRICT" json:"tutor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *JobBid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = BidPending
	}
	return nil
}

func (b *JobBid) IsPending() bool {
	return b.Status == BidPending
}
