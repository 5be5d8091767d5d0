package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/models"
)

func user(role models.Role, status models.UserStatus) *models.User {
	return &models.User{Role: role, Status: status}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		actor  *models.User
		action Action
		want   error
	}{
		{"student creates job", user(models.RoleStudent, models.UserStatusActive), CreateJob, nil},
		{"tutor creates job", user(models.RoleTutor, models.UserStatusActive), CreateJob, apperrors.ErrForbidden},
		{"admin creates job", user(models.RoleAdmin, models.UserStatusActive), CreateJob, apperrors.ErrForbidden},
		{"tutor bids", user(models.RoleTutor, models.UserStatusActive), SubmitBid, nil},
		{"student bids", user(models.RoleStudent, models.UserStatusActive), SubmitBid, apperrors.ErrForbidden},
		{"student reviews", user(models.RoleStudent, models.UserStatusActive), CreateReview, nil},
		{"tutor reviews", user(models.RoleTutor, models.UserStatusActive), CreateReview, apperrors.ErrForbidden},
		{"admin decides approval", user(models.RoleAdmin, models.UserStatusActive), DecideApproval, nil},
		{"tutor decides approval", user(models.RoleTutor, models.UserStatusActive), DecideApproval, apperrors.ErrForbidden},
		{"tutor maintains profile", user(models.RoleTutor, models.UserStatusActive), ManageTutorProfile, nil},
		{"pending student messages", user(models.RoleStudent, models.UserStatusPending), SendMessage, nil},
		{"banned student creates job", user(models.RoleStudent, models.UserStatusBanned), CreateJob, apperrors.ErrForbidden},
		{"banned admin moderates", user(models.RoleAdmin, models.UserStatusBanned), ModerateUser, apperrors.ErrForbidden},
		{"banned tutor messages", user(models.RoleTutor, models.UserStatusBanned), SendMessage, apperrors.ErrForbidden},
		{"no actor", nil, SendMessage, apperrors.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, tt.action)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEveryActionHasPolicy(t *testing.T) {
	actions := []Action{
		CreateJob, ManageJob, DecideBid, SubmitBid, CreateReview, DeleteReview,
		ManageTutorProfile, DecideApproval, ModerateUser, SendMessage,
		ReadConversation, UpdateOwnProfile, SignalPresence, RequestUpload,
	}
	for _, a := range actions {
		_, ok := policy[a]
		assert.True(t, ok, "missing policy for %s", a)
	}
}
