package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/events"
	"github.com/anjiri1684/teacheron/validation"
)

// CacheInvalidator drops cached public responses after a committed write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, groups ...string) error
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

type Deps struct {
	DB        *gorm.DB
	Validator *validation.Validator
	Events    events.Publisher
	Cache     CacheInvalidator
	Logger    *slog.Logger
	Auth      AuthConfig
}

type Services struct {
	Users    *UserService
	Tutors   *TutorService
	Jobs     *JobService
	Messages *MessageService
	Reviews  *ReviewService
	Admin    *AdminService
}

func New(d Deps) *Services {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	b := base{db: d.DB, validator: d.Validator, events: d.Events, cache: d.Cache, logger: d.Logger}
	return &Services{
		Users:    &UserService{base: b, auth: d.Auth},
		Tutors:   &TutorService{base: b},
		Jobs:     &JobService{base: b},
		Messages: &MessageService{base: b},
		Reviews:  &ReviewService{base: b},
		Admin:    &AdminService{base: b},
	}
}

type base struct {
	db        *gorm.DB
	validator *validation.Validator
	events    events.Publisher
	cache     CacheInvalidator
	logger    *slog.Logger
}

func (b base) invalidate(ctx context.Context, groups ...string) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Invalidate(ctx, groups...); err != nil {
		b.logger.WarnContext(ctx, "cache invalidation failed", "groups", groups, "error", err)
	}
}

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("%s not found", what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Invalid(field, "must be a valid id")
	}
	return id, nil
}
