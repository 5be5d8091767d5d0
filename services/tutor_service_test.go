package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/testutil"
	"github.com/anjiri1684/teacheron/validation"
)

func TestSearchTutors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	maths := testutil.CreateUser(t, f.db, "maths", models.RoleTutor)
	testutil.ApproveTutor(t, f.db, maths, "Mathematics, Statistics", "Nairobi")
	physics := testutil.CreateUser(t, f.db, "physics", models.RoleTutor)
	testutil.ApproveTutor(t, f.db, physics, "Physics", "Mombasa")
	rejected := testutil.CreateUser(t, f.db, "rejected", models.RoleTutor)
	testutil.ApproveTutor(t, f.db, rejected, "Mathematics", "Nairobi")
	require.NoError(t, f.db.Model(&models.TutorProfile{}).Where("user_id = ?", rejected.ID).
		Update("approval_status", models.ApprovalRejected).Error)
	testutil.CreateUser(t, f.db, "pending", models.RoleTutor)

	t.Run("empty filter returns approved in creation order", func(t *testing.T) {
		page, err := f.svc.Tutors.Search(ctx, validation.TutorSearchRequest{})
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.Equal(t, maths.ID, page.Data[0].UserID)
		assert.Equal(t, physics.ID, page.Data[1].UserID)
		assert.Equal(t, "maths", page.Data[0].User.Username)
	})

	t.Run("subject is case-insensitive substring", func(t *testing.T) {
		page, err := f.svc.Tutors.Search(ctx, validation.TutorSearchRequest{Subject: "MATH"})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, maths.ID, page.Data[0].UserID)
	})

	t.Run("location filter", func(t *testing.T) {
		page, err := f.svc.Tutors.Search(ctx, validation.TutorSearchRequest{Location: "mombasa"})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, physics.ID, page.Data[0].UserID)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		page, err := f.svc.Tutors.Search(ctx, validation.TutorSearchRequest{Subject: "%"})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
	})

	t.Run("rating sort", func(t *testing.T) {
		require.NoError(t, f.db.Model(&models.TutorProfile{}).Where("user_id = ?", physics.ID).
			Updates(map[string]any{"average_rating": 4.5, "total_reviews": 2}).Error)
		page, err := f.svc.Tutors.Search(ctx, validation.TutorSearchRequest{Sort: "rating"})
		require.NoError(t, err)
		require.Len(t, page.Data, 2)
		assert.Equal(t, physics.ID, page.Data[0].UserID)
	})

	t.Run("unknown sort is invalid", func(t *testing.T) {
		_, err := f.svc.Tutors.Search(ctx, validation.TutorSearchRequest{Sort: "price"})
		requireInvalid(t, err, "sort")
	})

	t.Run("unapproved profile is not public", func(t *testing.T) {
		_, err := f.svc.Tutors.GetApproved(ctx, rejected.ID)
		requireKind(t, err, apperrors.ErrNotFound)
	})
}

func TestUpdateOwnProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tutor := testutil.CreateUser(t, f.db, "tutor1", models.RoleTutor)
	student := testutil.CreateUser(t, f.db, "student1", models.RoleStudent)

	subjects := "  Chemistry "
	rate := 25.0
	p, err := f.svc.Tutors.UpdateOwn(ctx, tutor, validation.TutorProfileRequest{Subjects: &subjects, HourlyRate: &rate})
	require.NoError(t, err)
	require.NotNil(t, p.Subjects)
	assert.Equal(t, "Chemistry", *p.Subjects)
	assert.Equal(t, models.ApprovalPending, p.ApprovalStatus)
	assert.Zero(t, p.TotalReviews)

	_, err = f.svc.Tutors.UpdateOwn(ctx, student, validation.TutorProfileRequest{Subjects: &subjects})
	requireKind(t, err, apperrors.ErrForbidden)

	own, err := f.svc.Tutors.GetOwn(ctx, tutor)
	require.NoError(t, err)
	assert.Equal(t, tutor.ID, own.UserID)
}

func TestBannedTutorsAreHiddenFromDiscovery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	visible := testutil.CreateUser(t, f.db, "visible", models.RoleTutor)
	testutil.ApproveTutor(t, f.db, visible, "Chemistry", "Nairobi")
	banned := testutil.CreateUser(t, f.db, "banned", models.RoleTutor)
	testutil.ApproveTutor(t, f.db, banned, "Chemistry", "Nairobi")
	testutil.SetStatus(t, f.db, banned, models.UserStatusBanned)

	page, err := f.svc.Tutors.Search(ctx, validation.TutorSearchRequest{Subject: "chem"})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, visible.ID, page.Data[0].UserID)
	assert.EqualValues(t, 1, page.Meta.Total)

	_, err = f.svc.Tutors.GetApproved(ctx, banned.ID)
	requireKind(t, err, apperrors.ErrNotFound)

	got, err := f.svc.Tutors.GetApproved(ctx, visible.ID)
	require.NoError(t, err)
	assert.Equal(t, "visible", got.User.Username)
}
