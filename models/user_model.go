package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string     `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	FullName     string     `gorm:"size:255" json:"full_name"`
	Role         Role       `gorm:"size:20;not null;default:'student'" json:"role"`
	Status       UserStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	BanReason    *string    `gorm:"type:text" json:"-"`
	Bio          *string    `gorm:"type:text" json:"bio"`
	Location     *string    `gorm:"size:255" json:"location"`
	HourlyRate   *float64   `gorm:"type:numeric(10,2)" json:"hourly_rate"`
	ProfileImage *string    `gorm:"size:512" json:"profile_image"`
	IsOnline     bool       `gorm:"not null;default:false" json:"is_online"`
	LastSeenAt   *time.Time `json:"last_seen_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsBanned() bool {
	return u.Status == UserStatusBanned
}

// AdminUserView is the account as moderators see it. BanReason is hidden
// everywhere else.
type AdminUserView struct {
	*User
	BanReason *string `json:"ban_reason,omitempty"`
}

func (u *User) AdminView() AdminUserView {
	return AdminUserView{User: u, BanReason: u.BanReason}
}
