package database

import (
	"context"
	"fmt"
	"time"

	"github.com/miftajuneidi2008/ansar-dfp/internal/config"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// BuildDSN builds the PostgreSQL DSN.
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig returns the development pool defaults.
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600,
		ConnMaxIdleTime: 600,
	}
}

// GetProductionPoolConfig returns the production pool defaults.
func GetProductionPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    20,
		MaxOpenConns:    200,
		ConnMaxLifetime: 3600,
		ConnMaxIdleTime: 300,
	}
}

// Connect opens the database and configures the pool from the config,
// falling back to defaults for unset values.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetPoolConfig())
}

// ConnectProduction opens the database with production pool defaults.
func ConnectProduction(cfg config.DatabaseConfig) (*gorm.DB, error) {
	return connect(cfg, GetProductionPoolConfig())
}

func connect(cfg config.DatabaseConfig, defaults *PoolConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	pool := &PoolConfig{
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}
	if pool.MaxIdleConns == 0 {
		pool.MaxIdleConns = defaults.MaxIdleConns
	}
	if pool.MaxOpenConns == 0 {
		pool.MaxOpenConns = defaults.MaxOpenConns
	}
	if pool.ConnMaxLifetime == 0 {
		pool.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	if pool.ConnMaxIdleTime == 0 {
		pool.ConnMaxIdleTime = defaults.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	dialector := db.Dialector.Name()

	// SQLite has no jsonb; its tables are created by hand. The GORM SQLite
	// dialector reports either "sqlite" or "sqlite3".
	if dialector == "sqlite" || dialector == "sqlite3" {
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		if err := db.AutoMigrate(
			&model.DistrictModel{},
			&model.BranchModel{},
			&model.ProductModel{},
			&model.UserModel{},
			&model.ApplicationModel{},
			&model.StatusHistoryModel{},
			&model.ApproverAssignmentModel{},
			&model.NotificationModel{},
			&model.AuditLogModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createSQLiteTables(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS districts (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			code VARCHAR(32) UNIQUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create districts table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS branches (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			code VARCHAR(32),
			district_id VARCHAR(64) NOT NULL,
			address TEXT,
			phone VARCHAR(32),
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create branches table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			description TEXT,
			product_code VARCHAR(32),
			is_active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			full_name VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL,
			branch_id VARCHAR(64),
			password_hash VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT 1,
			last_login DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS applications (
			id VARCHAR(64) PRIMARY KEY,
			application_number VARCHAR(32) NOT NULL UNIQUE,
			customer_name VARCHAR(255) NOT NULL,
			customer_id VARCHAR(64),
			phone_number VARCHAR(32) NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			branch_id VARCHAR(64) NOT NULL,
			status VARCHAR(32) NOT NULL,
			application_amount DECIMAL(14,2) NOT NULL,
			interest_rate DECIMAL(6,2),
			tenure_months INTEGER,
			monthly_installment DECIMAL(14,2),
			remarks TEXT,
			submitted_by VARCHAR(64) NOT NULL,
			submitted_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			decided_at DATETIME
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create applications table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS application_status_history (
			id VARCHAR(64) PRIMARY KEY,
			application_id VARCHAR(64) NOT NULL,
			from_status VARCHAR(32),
			to_status VARCHAR(32) NOT NULL,
			action_by VARCHAR(64) NOT NULL,
			action_by_role VARCHAR(32) NOT NULL,
			reason TEXT,
			comments TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create application_status_history table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS approver_assignments (
			id VARCHAR(64) PRIMARY KEY,
			approver_id VARCHAR(64) NOT NULL,
			scope_type VARCHAR(16) NOT NULL,
			scope_id VARCHAR(64) NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create approver_assignments table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS notifications (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL,
			type VARCHAR(32) NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			related_application_id VARCHAR(64),
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}

	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_logs (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			resource_type VARCHAR(32) NOT NULL,
			resource_id VARCHAR(64) NOT NULL,
			request_id VARCHAR(64),
			ip VARCHAR(45),
			user_agent TEXT,
			details TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create audit_logs table: %w", err)
	}

	return nil
}

// CreateIndexes creates the secondary indexes.
func CreateIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		stmt string
	}{
		{"idx_branches_district_id", "CREATE INDEX IF NOT EXISTS idx_branches_district_id ON branches(district_id)"},
		{"idx_branch_district_name", "CREATE UNIQUE INDEX IF NOT EXISTS idx_branch_district_name ON branches(name, district_id)"},

		{"idx_users_role", "CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)"},
		{"idx_users_branch_id", "CREATE INDEX IF NOT EXISTS idx_users_branch_id ON users(branch_id)"},

		{"idx_applications_status", "CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status)"},
		{"idx_applications_branch_id", "CREATE INDEX IF NOT EXISTS idx_applications_branch_id ON applications(branch_id)"},
		{"idx_applications_product_id", "CREATE INDEX IF NOT EXISTS idx_applications_product_id ON applications(product_id)"},
		{"idx_applications_submitted_by", "CREATE INDEX IF NOT EXISTS idx_applications_submitted_by ON applications(submitted_by)"},
		{"idx_applications_submitted_at", "CREATE INDEX IF NOT EXISTS idx_applications_submitted_at ON applications(submitted_at)"},
		{"idx_applications_decided_at", "CREATE INDEX IF NOT EXISTS idx_applications_decided_at ON applications(decided_at)"},

		{"idx_history_application_id", "CREATE INDEX IF NOT EXISTS idx_history_application_id ON application_status_history(application_id)"},
		{"idx_history_created_at", "CREATE INDEX IF NOT EXISTS idx_history_created_at ON application_status_history(created_at)"},

		{"idx_assignments_approver_id", "CREATE INDEX IF NOT EXISTS idx_assignments_approver_id ON approver_assignments(approver_id)"},
		{"idx_assignments_scope_id", "CREATE INDEX IF NOT EXISTS idx_assignments_scope_id ON approver_assignments(scope_id)"},
		{"idx_assignment_scope", "CREATE UNIQUE INDEX IF NOT EXISTS idx_assignment_scope ON approver_assignments(approver_id, scope_type, scope_id)"},

		{"idx_notifications_user_id", "CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)"},
		{"idx_notifications_is_read", "CREATE INDEX IF NOT EXISTS idx_notifications_is_read ON notifications(is_read)"},
		{"idx_notifications_created_at", "CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at)"},

		{"idx_audit_resource", "CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_logs(resource_type, resource_id)"},
		{"idx_audit_user_id", "CREATE INDEX IF NOT EXISTS idx_audit_user_id ON audit_logs(user_id)"},
		{"idx_audit_created_at", "CREATE INDEX IF NOT EXISTS idx_audit_created_at ON audit_logs(created_at)"},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.stmt).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", idx.name, err)
		}
	}

	return nil
}

// ConnectWithRetry connects with exponential backoff.
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth reports whether the database answers a ping.
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx) == nil
}

// Reconnect closes the old connection and opens a new one.
func Reconnect(cfg config.DatabaseConfig, oldDB *gorm.DB) (*gorm.DB, error) {
	if oldDB != nil {
		if sqlDB, err := oldDB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return Connect(cfg)
}
