package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/testutil"
	"github.com/anjiri1684/teacheron/validation"
)

func profileOf(t *testing.T, f *fixture, tutor *models.User) models.TutorProfile {
	t.Helper()
	var p models.TutorProfile
	require.NoError(t, f.db.First(&p, "user_id = ?", tutor.ID).Error)
	return p
}

func TestReviewAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tutor := testutil.CreateUser(t, f.db, "tutor1", models.RoleTutor)
	s1 := testutil.CreateUser(t, f.db, "student1", models.RoleStudent)
	s2 := testutil.CreateUser(t, f.db, "student2", models.RoleStudent)

	_, err := f.svc.Reviews.Create(ctx, s1, validation.CreateReviewRequest{TutorID: tutor.ID.String(), Rating: 5, Comment: "great"})
	require.NoError(t, err)
	r2, err := f.svc.Reviews.Create(ctx, s2, validation.CreateReviewRequest{TutorID: tutor.ID.String(), Rating: 2})
	require.NoError(t, err)

	p := profileOf(t, f, tutor)
	assert.InDelta(t, 3.5, p.AverageRating, 1e-9)
	assert.EqualValues(t, 2, p.TotalReviews)

	admin := testutil.CreateUser(t, f.db, "admin", models.RoleAdmin)
	require.NoError(t, f.svc.Reviews.Delete(ctx, admin, r2.ID))

	p = profileOf(t, f, tutor)
	assert.InDelta(t, 5.0, p.AverageRating, 1e-9)
	assert.EqualValues(t, 1, p.TotalReviews)

	page, err := f.svc.Reviews.ListForTutor(ctx, tutor.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.NotNil(t, page.Data[0].Student)
	assert.Equal(t, "student1", page.Data[0].Student.Username)
}

func TestConcurrentReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tutor := testutil.CreateUser(t, f.db, "tutor1", models.RoleTutor)

	const n = 10
	students := make([]*models.User, n)
	for i := range students {
		students[i] = testutil.CreateUser(t, f.db, fmt.Sprintf("student%d", i), models.RoleStudent)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i, s := range students {
		wg.Add(1)
		go func(s *models.User, rating int) {
			defer wg.Done()
			_, err := f.svc.Reviews.Create(ctx, s, validation.CreateReviewRequest{TutorID: tutor.ID.String(), Rating: rating})
			errs <- err
		}(s, i%5+1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var want struct {
		Average float64
		Total   int64
	}
	require.NoError(t, f.db.Model(&models.Review{}).
		Select("CAST(AVG(rating) AS FLOAT) AS average, COUNT(*) AS total").
		Where("tutor_id = ?", tutor.ID).Scan(&want).Error)

	p := profileOf(t, f, tutor)
	assert.EqualValues(t, n, p.TotalReviews)
	assert.EqualValues(t, want.Total, p.TotalReviews)
	assert.InDelta(t, want.Average, p.AverageRating, 1e-9)
	assert.InDelta(t, 3.0, p.AverageRating, 1e-9)
}

func TestReviewRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tutor := testutil.CreateUser(t, f.db, "tutor1", models.RoleTutor)
	otherTutor := testutil.CreateUser(t, f.db, "tutor2", models.RoleTutor)
	student := testutil.CreateUser(t, f.db, "student1", models.RoleStudent)
	stranger := testutil.CreateUser(t, f.db, "student2", models.RoleStudent)

	job := postJob(t, f, student, "Reviewed job")
	b := bid(t, f, tutor, job, 20)
	_, err := f.svc.Jobs.AcceptBid(ctx, student, job.ID, b.ID)
	require.NoError(t, err)
	jobID := job.ID.String()

	t.Run("tutors cannot review", func(t *testing.T) {
		_, err := f.svc.Reviews.Create(ctx, otherTutor, validation.CreateReviewRequest{TutorID: tutor.ID.String(), Rating: 4})
		requireKind(t, err, apperrors.ErrForbidden)
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, err := f.svc.Reviews.Create(ctx, student, validation.CreateReviewRequest{TutorID: tutor.ID.String(), Rating: 6})
		requireInvalid(t, err, "rating")
	})

	t.Run("unknown tutor", func(t *testing.T) {
		_, err := f.svc.Reviews.Create(ctx, student, validation.CreateReviewRequest{TutorID: uuid.NewString(), Rating: 4})
		requireKind(t, err, apperrors.ErrNotFound)
	})

	t.Run("job must belong to reviewer", func(t *testing.T) {
		_, err := f.svc.Reviews.Create(ctx, stranger, validation.CreateReviewRequest{TutorID: tutor.ID.String(), JobID: &jobID, Rating: 4})
		requireKind(t, err, apperrors.ErrForbidden)
	})

	t.Run("job must be assigned to tutor", func(t *testing.T) {
		_, err := f.svc.Reviews.Create(ctx, student, validation.CreateReviewRequest{TutorID: otherTutor.ID.String(), JobID: &jobID, Rating: 4})
		requireKind(t, err, apperrors.ErrConflict)
	})

	t.Run("one review per job", func(t *testing.T) {
		_, err := f.svc.Reviews.Create(ctx, student, validation.CreateReviewRequest{TutorID: tutor.ID.String(), JobID: &jobID, Rating: 4})
		require.NoError(t, err)
		_, err = f.svc.Reviews.Create(ctx, student, validation.CreateReviewRequest{TutorID: tutor.ID.String(), JobID: &jobID, Rating: 1})
		requireKind(t, err, apperrors.ErrConflict)

		p := profileOf(t, f, tutor)
		assert.EqualValues(t, 1, p.TotalReviews)
		assert.InDelta(t, 4.0, p.AverageRating, 1e-9)
	})

	t.Run("only admins delete", func(t *testing.T) {
		var r models.Review
		require.NoError(t, f.db.First(&r, "tutor_id = ?", tutor.ID).Error)
		err := f.svc.Reviews.Delete(ctx, student, r.ID)
		requireKind(t, err, apperrors.ErrForbidden)
	})
}
