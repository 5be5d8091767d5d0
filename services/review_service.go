package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/authz"
	"github.com/anjiri1684/teacheron/cache"
	"github.com/anjiri1684/teacheron/events"
	"github.com/anjiri1684/teacheron/metrics"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/validation"
)

// ReviewService keeps TutorProfile.AverageRating and TotalReviews equal to the
// aggregate over the tutor's reviews. Every write locks the profile row and
// recomputes the pair before committing.
type ReviewService struct {
	base
}

func (s *ReviewService) Create(ctx context.Context, actor *models.User, req validation.CreateReviewRequest) (*models.Review, error) {
	if err := authz.Authorize(actor, authz.CreateReview); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	tutorID, err := ParseID("tutor_id", req.TutorID)
	if err != nil {
		return nil, err
	}
	var jobID *uuid.UUID
	if req.JobID != nil {
		id, err := ParseID("job_id", *req.JobID)
		if err != nil {
			return nil, err
		}
		jobID = &id
	}

	review := models.Review{
		StudentID: actor.ID,
		TutorID:   tutorID,
		JobID:     jobID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.TutorProfile
		if err := forUpdate(tx).First(&profile, "user_id = ?", tutorID).Error; err != nil {
			return notFoundOr(err, "tutor")
		}

		if jobID != nil {
			if err := checkReviewJob(tx, actor.ID, tutorID, *jobID); err != nil {
				return err
			}
		}

		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("this job has already been reviewed")
			}
			return fmt.Errorf("create review: %w", err)
		}
		return recomputeRating(tx, tutorID)
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewsCreated.Inc()
	s.invalidate(ctx, cache.GroupTutors)
	s.events.Publish(ctx, events.TopicReviewCreated, events.ReviewCreated{
		ReviewID: review.ID, TutorID: tutorID, StudentID: actor.ID, Rating: review.Rating,
	})
	return &review, nil
}

// checkReviewJob requires the job to belong to the student, be assigned to
// the tutor and not be reviewed yet.
func checkReviewJob(tx *gorm.DB, studentID, tutorID, jobID uuid.UUID) error {
	var job models.Job
	if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
		return notFoundOr(err, "job")
	}
	if !job.IsOwnedBy(studentID) {
		return apperrors.Forbidden("you can only review tutors on your own jobs")
	}
	if job.AssignedTutorID == nil || *job.AssignedTutorID != tutorID {
		return apperrors.Conflict("the job was not assigned to this tutor")
	}
	var existing int64
	if err := tx.Model(&models.Review{}).Where("job_id = ?", jobID).Count(&existing).Error; err != nil {
		return fmt.Errorf("check existing review: %w", err)
	}
	if existing > 0 {
		return apperrors.Conflict("this job has already been reviewed")
	}
	return nil
}

// Delete removes a review and recomputes the tutor's aggregate.
func (s *ReviewService) Delete(ctx context.Context, actor *models.User, reviewID uuid.UUID) error {
	if err := authz.Authorize(actor, authz.DeleteReview); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", reviewID).Error; err != nil {
			return notFoundOr(err, "review")
		}
		var profile models.TutorProfile
		if err := forUpdate(tx).First(&profile, "user_id = ?", review.TutorID).Error; err != nil {
			return notFoundOr(err, "tutor")
		}
		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		return recomputeRating(tx, review.TutorID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.GroupTutors)
	s.logger.InfoContext(ctx, "review deleted", "review_id", reviewID, "admin_id", actor.ID)
	return nil
}

func (s *ReviewService) ListForTutor(ctx context.Context, tutorID uuid.UUID, page, limit int) (Page[models.Review], error) {
	p := newPager(page, limit)
	query := s.db.WithContext(ctx).Model(&models.Review{}).Where("tutor_id = ?", tutorID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.Review]{}, fmt.Errorf("count reviews: %w", err)
	}
	var reviews []models.Review
	if err := p.scope(query).Preload("Student").Order("created_at DESC, id ASC").Find(&reviews).Error; err != nil {
		return Page[models.Review]{}, fmt.Errorf("list reviews: %w", err)
	}
	return newPage(reviews, total, p), nil
}

type ratingAggregate struct {
	Average float64
	Total   int64
}

// recomputeRating must run inside a transaction holding the profile lock.
func recomputeRating(tx *gorm.DB, tutorID uuid.UUID) error {
	var agg ratingAggregate
	err := tx.Model(&models.Review{}).
		Select("CAST(COALESCE(AVG(rating), 0) AS FLOAT) AS average, COUNT(*) AS total").
		Where("tutor_id = ?", tutorID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("aggregate ratings: %w", err)
	}
	err = tx.Model(&models.TutorProfile{}).Where("user_id = ?", tutorID).
		Updates(map[string]any{"average_rating": agg.Average, "total_reviews": agg.Total}).Error
	if err != nil {
		return fmt.Errorf("update rating aggregate: %w", err)
	}
	return nil
}
