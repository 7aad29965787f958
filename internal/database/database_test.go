package database_test

import (
	"testing"

	"github.com/miftajuneidi2008/ansar-dfp/internal/config"
	"github.com/miftajuneidi2008/ansar-dfp/internal/database"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	for _, table := range []string{
		"districts", "branches", "products", "users",
		"applications", "status_history", "approver_assignments",
		"notifications", "audit_logs",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Migrating twice is safe.
	require.NoError(t, database.Migrate(db))
}

func TestMigrateEnforcesUniqueApplicationNumber(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mk := func(id string) *model.ApplicationModel {
		return &model.ApplicationModel{
			ID: id, ApplicationNumber: "APP-20250114-SAME",
			CustomerName: "A B", PhoneNumber: "0911", ProductID: "p1", BranchID: "b1",
			Status: model.StatusPending, ApplicationAmount: 100, SubmittedBy: "u1",
		}
	}
	require.NoError(t, db.Create(mk("a1")).Error)
	assert.Error(t, db.Create(mk("a2")).Error)
}

func TestMigrateEnforcesAssignmentUniqueness(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mk := func(id string) *model.ApproverAssignmentModel {
		return &model.ApproverAssignmentModel{
			ID: id, ApproverID: "u1", ScopeType: model.ScopeBranch, ScopeID: "b1",
		}
	}
	require.NoError(t, db.Create(mk("as1")).Error)
	assert.Error(t, db.Create(mk("as2")).Error)
}

func TestBuildDSN(t *testing.T) {
	dsn := database.BuildDSN(config.DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "portal",
		Password: "secret", DBName: "ansar_dfp", SSLMode: "require",
	})
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "user=portal")
	assert.Contains(t, dsn, "dbname=ansar_dfp")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestCheckHealth(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	assert.True(t, database.CheckHealth(db))
	assert.False(t, database.CheckHealth(nil))
}
