// Package authz holds the single role/status policy consulted by every
// mutating operation.
package authz

import (
	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/models"
)

type Action string

const (
	CreateJob          Action = "job:create"
	ManageJob          Action = "job:manage"
	DecideBid          Action = "bid:decide"
	SubmitBid          Action = "bid:submit"
	CreateReview       Action = "review:create"
	DeleteReview       Action = "review:delete"
	ManageTutorProfile Action = "tutor_profile:manage"
	DecideApproval     Action = "tutor_profile:decide"
	ModerateUser       Action = "user:moderate"
	SendMessage        Action = "message:send"
	ReadConversation   Action = "message:read"
	UpdateOwnProfile   Action = "user:update_self"
	SignalPresence     Action = "user:presence"
	RequestUpload      Action = "upload:sign"
)

var anyRole = []models.Role{models.RoleStudent, models.RoleTutor, models.RoleAdmin}

var policy = map[Action][]models.Role{
	CreateJob:          {models.RoleStudent},
	ManageJob:          {models.RoleStudent},
	DecideBid:          {models.RoleStudent},
	SubmitBid:          {models.RoleTutor},
	CreateReview:       {models.RoleStudent},
	DeleteReview:       {models.RoleAdmin},
	ManageTutorProfile: {models.RoleTutor},
	DecideApproval:     {models.RoleAdmin},
	ModerateUser:       {models.RoleAdmin},
	SendMessage:        anyRole,
	ReadConversation:   anyRole,
	UpdateOwnProfile:   anyRole,
	SignalPresence:     anyRole,
	RequestUpload:      anyRole,
}

// Authorize fails with apperrors.ErrForbidden when actor may not perform
// action. Banned users are refused every action in the policy.
func Authorize(actor *models.User, action Action) error {
	if actor == nil {
		return apperrors.Unauthenticated("no current user")
	}
	if actor.IsBanned() {
		return apperrors.Forbidden("account is banned")
	}
	roles, ok := policy[action]
	if !ok {
		return apperrors.Forbidden("unknown action %q", action)
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return apperrors.Forbidden("role %s may not perform %s", actor.Role, action)
}

// Allowed is the boolean form of Authorize.
func Allowed(actor *models.User, action Action) bool {
	return Authorize(actor, action) == nil
}
