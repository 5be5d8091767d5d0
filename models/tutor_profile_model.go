package models

import (
	"time"

	"github.com/google/uuid"
)

// TutorProfile is the 1:1 extension of a tutor user. AverageRating and
// TotalReviews are derived from the tutor's reviews and are only written by
// the review service inside the same transaction as the review change.
type TutorProfile struct {
	UserID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Education       *string        `gorm:"type:text" json:"education"`
	Experience      *string        `gorm:"type:text" json:"experience"`
	Languages       *string        `gorm:"type:text" json:"languages"`
	Subjects        *string        `gorm:"type:text" json:"subjects"`
	HourlyRate      *float64       `gorm:"type:numeric(10,2)" json:"hourly_rate"`
	Bio             *string        `gorm:"type:text" json:"bio"`
	Location        *string        `gorm:"size:255" json:"location"`
	ProfileImage    *string        `gorm:"size:512" json:"profile_image"`
	AverageRating   float64        `gorm:"not null;default:0" json:"average_rating"`
	TotalReviews    int64          `gorm:"not null;default:0" json:"total_reviews"`
	ApprovalStatus  ApprovalStatus `gorm:"size:20;not null;default:'pending';index" json:"approval_status"`
	RejectionReason *string        `gorm:"type:text" json:"rejection_reason,omitempty"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *TutorProfile) IsApproved() bool {
	return p.ApprovalStatus == ApprovalApproved
}

// CanDecide reports whether an admin may approve or reject the profile.
func (p *TutorProfile) CanDecide() bool {
	return p.ApprovalStatus == ApprovalPending
}

// CanResubmit reports whether the tutor may send a rejected profile back to review.
func (p *TutorProfile) CanResubmit() bool {
	return p.ApprovalStatus == ApprovalRejected
}
