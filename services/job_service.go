package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

// JobService owns the job/bid state machine:
//
//	job:  open -> assigned -> completed
//	      open|assigned -> cancelled
//	bid:  pending -> accepted | rejected
//
// Every transition runs in a transaction holding a row lock on the job, so
// bid submission and acceptance on the same job are serialised.
type JobService struct {
	base
}

func (s *JobService) Create(ctx context.Context, actor *models.User, req validation.CreateJobRequest) (*models.Job, error) {
	if err := authz.Authorize(actor, authz.CreateJob); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	job := models.Job{
		StudentID:    actor.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Subjects:     strings.TrimSpace(req.Subjects),
		Location:     req.Location,
		HoursPerWeek: req.HoursPerWeek,
		Budget:       req.Budget,
		Status:       models.JobOpen,
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	metrics.JobsCreated.Inc()
	s.invalidate(ctx, cache.GroupJobs)
	s.logger.InfoContext(ctx, "job created", "job_id", job.ID, "student_id", actor.ID)
	return &job, nil
}

func (s *JobService) Update(ctx context.Context, actor *models.User, jobID uuid.UUID, req validation.UpdateJobRequest) (*models.Job, error) {
	if err := authz.Authorize(actor, authz.ManageJob); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Subjects != nil {
		updates["subjects"] = strings.TrimSpace(*req.Subjects)
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.HoursPerWeek != nil {
		updates["hours_per_week"] = *req.HoursPerWeek
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockOwnedJob(tx, actor, jobID)
		if err != nil {
			return err
		}
		if !job.CanEdit() {
			return apperrors.Conflict("job is %s and can no longer be edited", job.Status)
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(job).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.GroupJobs)
	return s.Get(ctx, jobID)
}

func (s *JobService) Get(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := s.db.WithContext(ctx).Preload("Student").First(&job, "id = ?", jobID).Error; err != nil {
		return nil, notFoundOr(err, "job")
	}
	return &job, nil
}

// List returns jobs filtered by status and subject, newest first.
func (s *JobService) List(ctx context.Context, req validation.JobSearchRequest) (Page[models.Job], error) {
	if err := s.validator.Struct(req); err != nil {
		return Page[models.Job]{}, err
	}
	p := newPager(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&models.Job{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if strings.TrimSpace(req.Subject) != "" {
		query = query.Where(`LOWER(subjects) LIKE ? ESCAPE '\'`, likePattern(req.Subject))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.Job]{}, fmt.Errorf("count jobs: %w", err)
	}
	var jobs []models.Job
	if err := p.scope(query).Preload("Student").Order("created_at DESC, id ASC").Find(&jobs).Error; err != nil {
		return Page[models.Job]{}, fmt.Errorf("list jobs: %w", err)
	}
	return newPage(jobs, total, p), nil
}

// ListMine returns the jobs posted by the calling student.
func (s *JobService) ListMine(ctx context.Context, actor *models.User) ([]models.Job, error) {
	if actor.Role != models.RoleStudent {
		return nil, apperrors.Forbidden("only students post jobs")
	}
	var jobs []models.Job
	err := s.db.WithContext(ctx).Where("student_id = ?", actor.ID).Order("created_at DESC").Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list own jobs: %w", err)
	}
	return jobs, nil
}

// SubmitBid creates a pending bid on an open job.
func (s *JobService) SubmitBid(ctx context.Context, actor *models.User, jobID uuid.UUID, req validation.CreateBidRequest) (*models.JobBid, error) {
	if err := authz.Authorize(actor, authz.SubmitBid); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var bid models.JobBid
	var job models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&job, "id = ?", jobID).Error; err != nil {
			return notFoundOr(err, "job")
		}
		if !job.CanAcceptBids() {
			return apperrors.Conflict("job is %s and is not accepting bids", job.Status)
		}

		var existing int64
		if err := tx.Model(&models.JobBid{}).Where("job_id = ? AND tutor_id = ?", jobID, actor.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing bid: %w", err)
		}
		if existing > 0 {
			return apperrors.Conflict("you have already bid on this job")
		}

		bid = models.JobBid{
			JobID:   jobID,
			TutorID: actor.ID,
			Amount:  req.Amount,
			Message: strings.TrimSpace(req.Message),
			Status:  models.BidPending,
		}
		if err := tx.Create(&bid).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("you have already bid on this job")
			}
			return fmt.Errorf("create bid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BidsSubmitted.Inc()
	s.events.Publish(ctx, events.TopicBidSubmitted, events.BidSubmitted{
		JobID: job.ID, BidID: bid.ID, TutorID: actor.ID, StudentID: job.StudentID, Amount: bid.Amount,
	})
	return &bid, nil
}

// ListBids shows every bid to the job owner and admins; a tutor only sees
// their own bid.
func (s *JobService) ListBids(ctx context.Context, actor *models.User, jobID uuid.UUID) ([]models.JobBid, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Preload("Tutor").Where("job_id = ?", jobID)
	switch {
	case actor.Role == models.RoleAdmin, job.IsOwnedBy(actor.ID):
	case actor.Role == models.RoleTutor:
		query = query.Where("tutor_id = ?", actor.ID)
	default:
		return nil, apperrors.Forbidden("only the job owner can view its bids")
	}

	var bids []models.JobBid
	if err := query.Order("created_at ASC, id ASC").Find(&bids).Error; err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return bids, nil
}

func (s *JobService) ListMyBids(ctx context.Context, actor *models.User) ([]models.JobBid, error) {
	if actor.Role != models.RoleTutor {
		return nil, apperrors.Forbidden("only tutors place bids")
	}
	var bids []models.JobBid
	err := s.db.WithContext(ctx).Preload("Job").Where("tutor_id = ?", actor.ID).Order("created_at DESC").Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("list own bids: %w", err)
	}
	return bids, nil
}

// AcceptBid accepts bidID, assigns the job to its tutor and rejects every
// other pending bid on the job, all in one transaction.
func (s *JobService) AcceptBid(ctx context.Context, actor *models.User, jobID, bidID uuid.UUID) (*models.Job, error) {
	if err := authz.Authorize(actor, authz.DecideBid); err != nil {
		return nil, err
	}

	var job *models.Job
	var bid models.JobBid
	var rejected []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if job, err = lockOwnedJob(tx, actor, jobID); err != nil {
			return err
		}
		if err := forUpdate(tx).First(&bid, "id = ? AND job_id = ?", bidID, jobID).Error; err != nil {
			return notFoundOr(err, "bid")
		}
		if !job.CanAcceptBids() {
			return apperrors.Conflict("job is %s and cannot accept a bid", job.Status)
		}
		if !bid.IsPending() {
			return apperrors.Conflict("bid is %s", bid.Status)
		}

		if err := tx.Model(&models.JobBid{}).
			Where("job_id = ? AND status = ? AND id <> ?", jobID, models.BidPending, bidID).
			Pluck("id", &rejected).Error; err != nil {
			return fmt.Errorf("collect sibling bids: %w", err)
		}
		if len(rejected) > 0 {
			if err := tx.Model(&models.JobBid{}).Where("id IN ?", rejected).
				Update("status", models.BidRejected).Error; err != nil {
				return fmt.Errorf("reject sibling bids: %w", err)
			}
		}
		if err := tx.Model(&bid).Update("status", models.BidAccepted).Error; err != nil {
			return fmt.Errorf("accept bid: %w", err)
		}

		job.Status = models.JobAssigned
		job.AssignedTutorID = &bid.TutorID
		job.AssignedBidID = &bid.ID
		if err := tx.Model(job).Updates(map[string]any{
			"status":            models.JobAssigned,
			"assigned_tutor_id": bid.TutorID,
			"assigned_bid_id":   bid.ID,
		}).Error; err != nil {
			return fmt.Errorf("assign job: %w", err)
		}

		return assertSingleAccepted(tx, jobID)
	})
	if err != nil {
		return nil, err
	}

	metrics.JobTransitions.WithLabelValues(string(models.JobAssigned)).Inc()
	s.invalidate(ctx, cache.GroupJobs)
	s.events.Publish(ctx, events.TopicBidAccepted, events.BidAccepted{
		JobID: jobID, BidID: bid.ID, TutorID: bid.TutorID, StudentID: actor.ID, RejectedBidIDs: rejected,
	})
	s.logger.InfoContext(ctx, "bid accepted", "job_id", jobID, "bid_id", bidID, "rejected", len(rejected))
	return job, nil
}

// RejectBid declines a single pending bid while the job is still open.
func (s *JobService) RejectBid(ctx context.Context, actor *models.User, jobID, bidID uuid.UUID) (*models.JobBid, error) {
	if err := authz.Authorize(actor, authz.DecideBid); err != nil {
		return nil, err
	}

	var bid models.JobBid
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := lockOwnedJob(tx, actor, jobID)
		if err != nil {
			return err
		}
		if err := forUpdate(tx).First(&bid, "id = ? AND job_id = ?", bidID, jobID).Error; err != nil {
			return notFoundOr(err, "bid")
		}
		if !job.CanAcceptBids() {
			return apperrors.Conflict("job is %s", job.Status)
		}
		if !bid.IsPending() {
			return apperrors.Conflict("bid is %s", bid.Status)
		}
		bid.Status = models.BidRejected
		return tx.Model(&bid).Update("status", models.BidRejected).Error
	})
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// Complete moves an assigned job to completed.
func (s *JobService) Complete(ctx context.Context, actor *models.User, jobID uuid.UUID) (*models.Job, error) {
	return s.close(ctx, actor, jobID, models.JobCompleted)
}

// Cancel moves an open or assigned job to cancelled and rejects any bids
// still pending on it.
func (s *JobService) Cancel(ctx context.Context, actor *models.User, jobID uuid.UUID) (*models.Job, error) {
	return s.close(ctx, actor, jobID, models.JobCancelled)
}

func (s *JobService) close(ctx context.Context, actor *models.User, jobID uuid.UUID, target models.JobStatus) (*models.Job, error) {
	if err := authz.Authorize(actor, authz.ManageJob); err != nil {
		return nil, err
	}

	var job *models.Job
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if job, err = lockOwnedJob(tx, actor, jobID); err != nil {
			return err
		}
		allowed := job.CanComplete()
		if target == models.JobCancelled {
			allowed = job.CanCancel()
		}
		if !allowed {
			return apperrors.Conflict("cannot move job from %s to %s", job.Status, target)
		}
		return transitionClosed(tx, job, target)
	})
	if err != nil {
		return nil, err
	}

	s.afterClose(ctx, job)
	return job, nil
}

// ExpireStale cancels open jobs created before now-maxAge. maxAge must be positive.
func (s *JobService) ExpireStale(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, apperrors.Invalid("max_age", "must be positive")
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND created_at < ?", models.JobOpen, cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("find stale jobs: %w", err)
	}

	expired := 0
	for _, id := range ids {
		var job models.Job
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := forUpdate(tx).First(&job, "id = ?", id).Error; err != nil {
				return notFoundOr(err, "job")
			}
			if job.Status != models.JobOpen {
				return nil
			}
			return transitionClosed(tx, &job, models.JobCancelled)
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "expire job failed", "job_id", id, "error", err)
			continue
		}
		if job.Status == models.JobCancelled {
			expired++
			s.afterClose(ctx, &job)
		}
	}
	return expired, nil
}

func (s *JobService) afterClose(ctx context.Context, job *models.Job) {
	metrics.JobTransitions.WithLabelValues(string(job.Status)).Inc()
	s.invalidate(ctx, cache.GroupJobs)
	s.events.Publish(ctx, events.TopicJobClosed, events.JobClosed{
		JobID: job.ID, StudentID: job.StudentID, Status: string(job.Status),
	})
}

func transitionClosed(tx *gorm.DB, job *models.Job, target models.JobStatus) error {
	if err := tx.Model(&models.JobBid{}).
		Where("job_id = ? AND status = ?", job.ID, models.BidPending).
		Update("status", models.BidRejected).Error; err != nil {
		return fmt.Errorf("reject pending bids: %w", err)
	}
	if err := tx.Model(job).Update("status", target).Error; err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	job.Status = target
	return nil
}

func lockOwnedJob(tx *gorm.DB, actor *models.User, jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := forUpdate(tx).First(&job, "id = ?", jobID).Error; err != nil {
		return nil, notFoundOr(err, "job")
	}
	if !job.IsOwnedBy(actor.ID) {
		return nil, apperrors.Forbidden("only the student who posted the job may change it")
	}
	return &job, nil
}

func assertSingleAccepted(tx *gorm.DB, jobID uuid.UUID) error {
	var accepted int64
	if err := tx.Model(&models.JobBid{}).Where("job_id = ? AND status = ?", jobID, models.BidAccepted).Count(&accepted).Error; err != nil {
		return fmt.Errorf("count accepted bids: %w", err)
	}
	if accepted != 1 {
		return fmt.Errorf("job %s would have %d accepted bids", jobID, accepted)
	}
	return nil
}
