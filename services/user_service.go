package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/authz"
	"github.com/anjiri1684/teacheron/cache"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/validation"
)

type UserService struct {
	base
	auth AuthConfig
}

// Register creates a student or tutor account. Tutors get a pending profile
// in the same transaction so that every tutor user has exactly one profile.
func (s *UserService) Register(ctx context.Context, req validation.RegisterRequest) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		FullName: req.FullName,
		Role:     models.Role(req.Role),
		Status:   models.UserStatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("email = ? OR username = ?", user.Email, user.Username).First(&existing).Error
		if err == nil {
			if existing.Email == user.Email {
				return apperrors.Conflict("email already registered")
			}
			return apperrors.Conflict("username already taken")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing user: %w", err)
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("username or email already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}

		if user.Role == models.RoleTutor {
			profile := models.TutorProfile{UserID: user.ID, ApprovalStatus: models.ApprovalPending}
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("create tutor profile: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return &user, nil
}

// Authenticate checks credentials and returns the user with a signed token.
func (s *UserService) Authenticate(ctx context.Context, req validation.LoginRequest) (*models.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, "", err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.Unauthenticated("invalid email or password")
		}
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", apperrors.Unauthenticated("invalid email or password")
	}
	if user.IsBanned() {
		reason := "account is banned"
		if user.BanReason != nil && *user.BanReason != "" {
			reason += ": " + *user.BanReason
		}
		return nil, "", apperrors.Forbidden("%s", reason)
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, "", err
	}
	if err := s.SetPresence(ctx, user.ID, true); err != nil {
		s.logger.WarnContext(ctx, "presence update failed", "user_id", user.ID, "error", err)
	}
	user.IsOnline = true
	return &user, token, nil
}

func (s *UserService) IssueToken(user *models.User) (string, error) {
	if s.auth.JWTSecret == "" {
		return "", errors.New("jwt secret not configured")
	}
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.auth.JWTExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.auth.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

// UpdateProfile edits the caller's own account. Role and status are not
// reachable from here.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, req validation.UpdateUserRequest) (*models.User, error) {
	if err := authz.Authorize(actor, authz.UpdateOwnProfile); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.HourlyRate != nil {
		updates["hourly_rate"] = *req.HourlyRate
	}
	if req.ProfileImage != nil {
		updates["profile_image"] = *req.ProfileImage
	}

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", actor.ID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	user, err := s.Get(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleTutor {
		s.invalidate(ctx, cache.GroupTutors)
	}
	return user, nil
}

// SetPresence records a presence signal for userID.
func (s *UserService) SetPresence(ctx context.Context, userID uuid.UUID, online bool) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]any{"is_online": online, "last_seen_at": now}).Error
	if err != nil {
		return fmt.Errorf("set presence: %w", err)
	}
	return nil
}

func (s *UserService) Heartbeat(ctx context.Context, actor *models.User, online bool) error {
	if err := authz.Authorize(actor, authz.SignalPresence); err != nil {
		return err
	}
	return s.SetPresence(ctx, actor.ID, online)
}

// MarkIdleOffline clears the online flag of users with no signal since timeout.
func (s *UserService) MarkIdleOffline(ctx context.Context, timeout time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-timeout)
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_online = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", true, cutoff).
		Update("is_online", false)
	if res.Error != nil {
		return 0, fmt.Errorf("mark idle users offline: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RefreshPresence bumps last_seen_at for users holding an open connection so
// the idle sweep leaves them online.
func (s *UserService) RefreshPresence(ctx context.Context, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", userIDs).
		Updates(map[string]any{"is_online": true, "last_seen_at": time.Now().UTC()}).Error
	if err != nil {
		return fmt.Errorf("refresh presence: %w", err)
	}
	return nil
}
