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
	"github.com/anjiri1684/teacheron/events"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/validation"
)

type AdminService struct {
	base
}

func (s *AdminService) ListUsers(ctx context.Context, actor *models.User, req validation.UserSearchRequest) (Page[models.User], error) {
	if err := authz.Authorize(actor, authz.ModerateUser); err != nil {
		return Page[models.User]{}, err
	}
	if err := s.validator.Struct(req); err != nil {
		return Page[models.User]{}, err
	}
	p := newPager(req.Page, req.Limit)

	query := s.db.WithContext(ctx).Model(&models.User{})
	if strings.TrimSpace(req.Search) != "" {
		pattern := likePattern(req.Search)
		query = query.Where(
			`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR LOWER(COALESCE(full_name, '')) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern)
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.User]{}, fmt.Errorf("count users: %w", err)
	}
	var users []models.User
	if err := p.scope(query).Order("created_at DESC, id ASC").Find(&users).Error; err != nil {
		return Page[models.User]{}, fmt.Errorf("list users: %w", err)
	}
	return newPage(users, total, p), nil
}

// ListPendingTutors returns tutor applications awaiting a decision, oldest first.
func (s *AdminService) ListPendingTutors(ctx context.Context, actor *models.User) ([]models.TutorProfile, error) {
	if err := authz.Authorize(actor, authz.DecideApproval); err != nil {
		return nil, err
	}
	var profiles []models.TutorProfile
	err := s.db.WithContext(ctx).Preload("User").
		Where("approval_status = ?", models.ApprovalPending).
		Order("updated_at ASC, user_id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list pending tutors: %w", err)
	}
	return profiles, nil
}

// DecideTutor approves or rejects a pending tutor profile. Decided profiles
// can not be decided again until the tutor resubmits.
func (s *AdminService) DecideTutor(ctx context.Context, actor *models.User, tutorID uuid.UUID, req validation.ApprovalDecisionRequest) (*models.TutorProfile, error) {
	if err := authz.Authorize(actor, authz.DecideApproval); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	decision := models.ApprovalStatus(req.Status)

	var reason *string
	if decision == models.ApprovalRejected && req.RejectionReason != nil {
		if r := strings.TrimSpace(*req.RejectionReason); r != "" {
			reason = &r
		}
	}

	var profile models.TutorProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&profile, "user_id = ?", tutorID).Error; err != nil {
			return notFoundOr(err, "tutor profile")
		}
		if !profile.CanDecide() {
			return apperrors.Conflict("tutor profile is already %s", profile.ApprovalStatus)
		}
		profile.ApprovalStatus = decision
		profile.RejectionReason = reason
		return tx.Model(&profile).Updates(map[string]any{
			"approval_status":  decision,
			"rejection_reason": reason,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.GroupTutors)
	s.events.Publish(ctx, events.TopicTutorDecision, events.TutorDecision{
		TutorID: tutorID, Status: string(decision), Reason: reason,
	})
	s.logger.InfoContext(ctx, "tutor decision", "tutor_id", tutorID, "status", decision, "admin_id", actor.ID)
	return &profile, nil
}

// SetUserStatus activates or bans a user. Admins can not change their own status.
func (s *AdminService) SetUserStatus(ctx context.Context, actor *models.User, userID uuid.UUID, req validation.UserStatusRequest) (*models.User, error) {
	if err := authz.Authorize(actor, authz.ModerateUser); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, apperrors.Conflict("you cannot change your own status")
	}
	status := models.UserStatus(req.Status)

	var reason *string
	if status == models.UserStatusBanned && req.BanReason != nil {
		if r := strings.TrimSpace(*req.BanReason); r != "" {
			reason = &r
		}
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return notFoundOr(err, "user")
		}
		updates := map[string]any{"status": status, "ban_reason": reason}
		if status == models.UserStatusBanned {
			updates["is_online"] = false
			user.IsOnline = false
		}
		user.Status = status
		user.BanReason = reason
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if user.Role == models.RoleTutor {
		s.invalidate(ctx, cache.GroupTutors)
	}
	s.events.Publish(ctx, events.TopicUserStatusChanged, events.UserStatusChanged{
		UserID: userID, Status: string(status), BanReason: reason,
	})
	s.logger.InfoContext(ctx, "user status changed", "user_id", userID, "status", status, "admin_id", actor.ID)
	return &user, nil
}
