package events

import "github.com/google/uuid"

type BidSubmitted struct {
	JobID     uuid.UUID `json:"job_id"`
	BidID     uuid.UUID `json:"bid_id"`
	TutorID   uuid.UUID `json:"tutor_id"`
	StudentID uuid.UUID `json:"student_id"`
	Amount    float64   `json:"amount"`
}

type BidAccepted struct {
	JobID          uuid.UUID   `json:"job_id"`
	BidID          uuid.UUID   `json:"bid_id"`
	TutorID        uuid.UUID   `json:"tutor_id"`
	StudentID      uuid.UUID   `json:"student_id"`
	RejectedBidIDs []uuid.UUID `json:"rejected_bid_ids"`
}

type JobClosed struct {
	JobID     uuid.UUID `json:"job_id"`
	StudentID uuid.UUID `json:"student_id"`
	Status    string    `json:"status"`
}

type TutorDecision struct {
	TutorID uuid.UUID `json:"tutor_id"`
	Status  string    `json:"status"`
	Reason  *string   `json:"reason,omitempty"`
}

type ReviewCreated struct {
	ReviewID  uuid.UUID `json:"review_id"`
	TutorID   uuid.UUID `json:"tutor_id"`
	StudentID uuid.UUID `json:"student_id"`
	Rating    int       `json:"rating"`
}

type UserStatusChanged struct {
	UserID    uuid.UUID `json:"user_id"`
	Status    string    `json:"status"`
	BanReason *string   `json:"ban_reason,omitempty"`
}

type MessageSent struct {
	MessageID  uuid.UUID `json:"message_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
}
