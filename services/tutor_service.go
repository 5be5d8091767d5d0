package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/authz"
	"github.com/anjiri1684/teacheron/cache"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/validation"
)

type TutorService struct {
	base
}

// likePattern builds a case-insensitive containment pattern with LIKE
// wildcards in the input escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// Search lists approved tutor profiles matching the optional subject and
// location filters. Order is creation order unless sort=rating.
func (s *TutorService) Search(ctx context.Context, req validation.TutorSearchRequest) (Page[models.TutorProfile], error) {
	if err := s.validator.Struct(req); err != nil {
		return Page[models.TutorProfile]{}, err
	}
	p := newPager(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&models.TutorProfile{}).Scopes(visibleTutors)
	if strings.TrimSpace(req.Subject) != "" {
		query = query.Where(`LOWER(COALESCE(tutor_profiles.subjects, '')) LIKE ? ESCAPE '\'`, likePattern(req.Subject))
	}
	if strings.TrimSpace(req.Location) != "" {
		query = query.Where(`LOWER(COALESCE(tutor_profiles.location, '')) LIKE ? ESCAPE '\'`, likePattern(req.Location))
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.TutorProfile]{}, fmt.Errorf("count tutors: %w", err)
	}

	order := "tutor_profiles.created_at ASC, tutor_profiles.user_id ASC"
	if req.Sort == "rating" {
		order = "tutor_profiles.average_rating DESC, tutor_profiles.total_reviews DESC, " + order
	}

	var profiles []models.TutorProfile
	if err := p.scope(query).Preload("User").Order(order).Find(&profiles).Error; err != nil {
		return Page[models.TutorProfile]{}, fmt.Errorf("search tutors: %w", err)
	}
	return newPage(profiles, total, p), nil
}

// visibleTutors limits profiles to approved tutors whose account is not banned.
func visibleTutors(db *gorm.DB) *gorm.DB {
	banned := db.Session(&gorm.Session{NewDB: true}).Model(&models.User{}).
		Select("id").Where("status = ?", models.UserStatusBanned)
	return db.Where("tutor_profiles.approval_status = ?", models.ApprovalApproved).
		Where("tutor_profiles.user_id NOT IN (?)", banned)
}

// GetApproved returns a publicly visible profile.
func (s *TutorService) GetApproved(ctx context.Context, tutorID uuid.UUID) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	err := s.db.WithContext(ctx).Model(&models.TutorProfile{}).Scopes(visibleTutors).Preload("User").
		First(&profile, "tutor_profiles.user_id = ?", tutorID).Error
	if err != nil {
		return nil, notFoundOr(err, "tutor")
	}
	return &profile, nil
}

func (s *TutorService) GetOwn(ctx context.Context, actor *models.User) (*models.TutorProfile, error) {
	if err := authz.Authorize(actor, authz.ManageTutorProfile); err != nil {
		return nil, err
	}
	return s.load(s.db.WithContext(ctx), actor.ID)
}

func (s *TutorService) load(db *gorm.DB, tutorID uuid.UUID) (*models.TutorProfile, error) {
	var profile models.TutorProfile
	if err := db.Preload("User").First(&profile, "user_id = ?", tutorID).Error; err != nil {
		return nil, notFoundOr(err, "tutor profile")
	}
	return &profile, nil
}

// UpdateOwn edits the descriptive fields of the caller's profile. Approval
// state and rating aggregates are never written here.
func (s *TutorService) UpdateOwn(ctx context.Context, actor *models.User, req validation.TutorProfileRequest) (*models.TutorProfile, error) {
	if err := authz.Authorize(actor, authz.ManageTutorProfile); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	set("education", req.Education)
	set("experience", req.Experience)
	set("languages", req.Languages)
	set("subjects", req.Subjects)
	set("bio", req.Bio)
	set("location", req.Location)
	set("profile_image", req.ProfileImage)
	if req.HourlyRate != nil {
		updates["hourly_rate"] = *req.HourlyRate
	}

	db := s.db.WithContext(ctx)
	if _, err := s.load(db, actor.ID); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := db.Model(&models.TutorProfile{}).Where("user_id = ?", actor.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update tutor profile: %w", err)
		}
	}

	s.invalidate(ctx, cache.GroupTutors)
	return s.load(db, actor.ID)
}

// Resubmit sends a rejected profile back to the approval queue.
func (s *TutorService) Resubmit(ctx context.Context, actor *models.User) (*models.TutorProfile, error) {
	if err := authz.Authorize(actor, authz.ManageTutorProfile); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.TutorProfile
		if err := forUpdate(tx).First(&profile, "user_id = ?", actor.ID).Error; err != nil {
			return notFoundOr(err, "tutor profile")
		}
		if !profile.CanResubmit() {
			return apperrors.Conflict("profile is %s; only rejected profiles can be resubmitted", profile.ApprovalStatus)
		}
		return tx.Model(&profile).Updates(map[string]any{
			"approval_status":  models.ApprovalPending,
			"rejection_reason": nil,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tutor profile resubmitted", "tutor_id", actor.ID)
	return s.load(s.db.WithContext(ctx), actor.ID)
}
