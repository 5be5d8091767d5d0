package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/events"
	"github.com/anjiri1684/teacheron/testutil"
)

type fixture struct {
	db     *gorm.DB
	svc    *Services
	events *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.DB(t)
	rec := &events.Recorder{}
	svc := New(Deps{
		DB:     db,
		Events: rec,
		Logger: testutil.Logger(),
		Auth:   AuthConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour},
	})
	return &fixture{db: db, svc: svc, events: rec}
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
}

func requireInvalid(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.FieldMap(), field)
}
