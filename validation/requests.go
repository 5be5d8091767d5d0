// Package validation holds the input schema for every entity together with
// the validator that enforces it before anything reaches persistence.
package validation

// User

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"omitempty,max=255"`
	Role     string `json:"role" validate:"required,signup_role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest deliberately has no role field: roles are immutable.
type UpdateUserRequest struct {
	FullName     *string  `json:"full_name" validate:"omitempty,max=255"`
	Bio          *string  `json:"bio" validate:"omitempty,max=5000"`
	Location     *string  `json:"location" validate:"omitempty,max=255"`
	HourlyRate   *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	ProfileImage *string  `json:"profile_image" validate:"omitempty,url,max=512"`
}

type PresenceRequest struct {
	Online bool `json:"online"`
}

// TutorProfile

type TutorProfileRequest struct {
	Education    *string  `json:"education" validate:"omitempty,max=5000"`
	Experience   *string  `json:"experience" validate:"omitempty,max=5000"`
	Languages    *string  `json:"languages" validate:"omitempty,max=1000"`
	Subjects     *string  `json:"subjects" validate:"omitempty,max=1000"`
	HourlyRate   *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	Bio          *string  `json:"bio" validate:"omitempty,max=5000"`
	Location     *string  `json:"location" validate:"omitempty,max=255"`
	ProfileImage *string  `json:"profile_image" validate:"omitempty,url,max=512"`
}

type TutorSearchRequest struct {
	Subject  string `query:"subject" validate:"omitempty,max=100"`
	Location string `query:"location" validate:"omitempty,max=100"`
	Sort     string `query:"sort" validate:"omitempty,oneof=created rating"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Job

type CreateJobRequest struct {
	Title        string  `json:"title" validate:"required,notblank,max=255"`
	Description  string  `json:"description" validate:"required,notblank,max=10000"`
	Subjects     string  `json:"subjects" validate:"required,notblank,max=1000"`
	Location     *string `json:"location" validate:"omitempty,max=255"`
	HoursPerWeek *int    `json:"hours_per_week" validate:"omitempty,min=1,max=168"`
	Budget       *string `json:"budget" validate:"omitempty,max=100"`
}

type UpdateJobRequest struct {
	Title        *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description  *string `json:"description" validate:"omitempty,notblank,max=10000"`
	Subjects     *string `json:"subjects" validate:"omitempty,notblank,max=1000"`
	Location     *string `json:"location" validate:"omitempty,max=255"`
	HoursPerWeek *int    `json:"hours_per_week" validate:"omitempty,min=1,max=168"`
	Budget       *string `json:"budget" validate:"omitempty,max=100"`
}

type JobSearchRequest struct {
	Status  string `query:"status" validate:"omitempty,job_status"`
	Subject string `query:"subject" validate:"omitempty,max=100"`
	Page    int    `query:"page" validate:"omitempty,min=1"`
	Limit   int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// JobBid

type CreateBidRequest struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Message string  `json:"message" validate:"omitempty,max=5000"`
}

// Message

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"required,notblank,max=5000"`
}

// Review

type CreateReviewRequest struct {
	TutorID string  `json:"tutor_id" validate:"required,uuid"`
	JobID   *string `json:"job_id" validate:"omitempty,uuid"`
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
	Comment string  `json:"comment" validate:"omitempty,max=5000"`
}

// Admin

type ApprovalDecisionRequest struct {
	Status          string  `json:"status" validate:"required,approval_decision"`
	RejectionReason *string `json:"rejection_reason" validate:"omitempty,max=2000"`
}

type UserStatusRequest struct {
	Status    string  `json:"status" validate:"required,user_status"`
	BanReason *string `json:"ban_reason" validate:"omitempty,max=2000"`
}

type UserSearchRequest struct {
	Search string `query:"search" validate:"omitempty,max=100"`
	Role   string `query:"role" validate:"omitempty,oneof=student tutor admin"`
	Status string `query:"status" validate:"omitempty,user_status"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}
