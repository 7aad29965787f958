package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/miftajuneidi2008/ansar-dfp/internal/auth"
	"github.com/miftajuneidi2008/ansar-dfp/internal/config"
	"github.com/miftajuneidi2008/ansar-dfp/internal/database"
	"github.com/miftajuneidi2008/ansar-dfp/internal/metrics"
	"github.com/miftajuneidi2008/ansar-dfp/internal/repository"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/miftajuneidi2008/ansar-dfp/internal/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Container wires the application graph: database, repositories, services,
// the websocket hub and the metrics collector.
type Container struct {
	db     *gorm.DB
	hub    *websocket.Hub
	tokens *auth.TokenManager

	applicationSvc  service.ApplicationService
	assignmentSvc   service.AssignmentService
	notificationSvc service.NotificationService
	directorySvc    service.DirectoryService
	userSvc         service.UserService
	statisticsSvc   service.StatisticsService
	auditLogSvc     service.AuditLogService

	collector *metrics.Collector
}

// NewContainer initializes every dependency from the configuration.
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if cfg.Auth.TokenSecret == "" {
		return nil, errors.New("auth.token_secret is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	// Database, with retry and exponential backoff.
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenIssuer,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}

	hub := websocket.NewHub()

	return NewContainerWithDB(db, hub, tokens, logger), nil
}

// NewContainerWithDB assembles the service graph on an existing database
// connection. Used directly by tests with an in-memory database.
func NewContainerWithDB(db *gorm.DB, hub *websocket.Hub, tokens *auth.TokenManager, logger *logrus.Logger) *Container {
	appRepo := repository.NewApplicationRepository(db)
	historyRepo := repository.NewStatusHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	districtRepo := repository.NewDistrictRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditLogSvc := service.NewAuditLogService(auditRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, hub, logger)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, districtRepo, branchRepo, productRepo, auditLogSvc)
	applicationSvc := service.NewApplicationService(db, appRepo, historyRepo, branchRepo, productRepo, assignmentSvc, notificationSvc, logger)
	directorySvc := service.NewDirectoryService(districtRepo, branchRepo, productRepo, userRepo, appRepo, auditLogSvc)
	userSvc := service.NewUserService(userRepo, branchRepo, tokens, auditLogSvc)
	statisticsSvc := service.NewStatisticsService(applicationSvc, appRepo)

	return &Container{
		db:              db,
		hub:             hub,
		tokens:          tokens,
		applicationSvc:  applicationSvc,
		assignmentSvc:   assignmentSvc,
		notificationSvc: notificationSvc,
		directorySvc:    directorySvc,
		userSvc:         userSvc,
		statisticsSvc:   statisticsSvc,
		auditLogSvc:     auditLogSvc,
	}
}

// StartBackground launches the hub loop and the metrics collector.
func (c *Container) StartBackground() {
	go c.hub.Run()

	c.collector = metrics.NewCollector(c.db, 30*time.Second, func(ctx context.Context) error {
		counts, err := repository.NewApplicationRepository(c.db).CountByStatus()
		if err != nil {
			return err
		}
		metrics.UpdateApplicationsByStatus(counts)
		return nil
	})
	c.collector.Start()
}

// DB returns the database handle.
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Hub returns the websocket hub.
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// Tokens returns the token manager.
func (c *Container) Tokens() *auth.TokenManager {
	return c.tokens
}

// ApplicationService returns the application lifecycle service.
func (c *Container) ApplicationService() service.ApplicationService {
	return c.applicationSvc
}

// AssignmentService returns the approver routing service.
func (c *Container) AssignmentService() service.AssignmentService {
	return c.assignmentSvc
}

// NotificationService returns the notification service.
func (c *Container) NotificationService() service.NotificationService {
	return c.notificationSvc
}

// DirectoryService returns the reference data service.
func (c *Container) DirectoryService() service.DirectoryService {
	return c.directorySvc
}

// UserService returns the user service.
func (c *Container) UserService() service.UserService {
	return c.userSvc
}

// StatisticsService returns the dashboard statistics service.
func (c *Container) StatisticsService() service.StatisticsService {
	return c.statisticsSvc
}

// AuditLogService returns the audit log service.
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLogSvc
}

// Close releases resources.
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
