package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/anjiri1684/teacheron/configs"
	"github.com/anjiri1684/teacheron/database"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/testutil"
)

func TestSeedAdmin(t *testing.T) {
	db := testutil.DB(t)
	cfg := &config.Config{
		AdminUsername: "admin",
		AdminEmail:    "admin@teacheron.test",
		AdminPassword: "change-me-now",
		AdminFullName: "Site Admin",
	}

	require.NoError(t, database.SeedAdmin(db, cfg, testutil.Logger()))
	require.NoError(t, database.SeedAdmin(db, cfg, testutil.Logger()))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@teacheron.test", admins[0].Email)
	assert.NotEqual(t, "change-me-now", admins[0].Password)
}

func TestSeedAdminSkippedWithoutCredentials(t *testing.T) {
	db := testutil.DB(t)
	require.NoError(t, database.SeedAdmin(db, &config.Config{}, testutil.Logger()))

	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := database.Connect(&config.Config{})
	require.Error(t, err)
}
