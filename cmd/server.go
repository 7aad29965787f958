/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miftajuneidi2008/ansar-dfp/internal/api"
	"github.com/miftajuneidi2008/ansar-dfp/internal/config"
	"github.com/miftajuneidi2008/ansar-dfp/internal/container"
	"github.com/spf13/cobra"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the Ansar DFP API server.
The server listens on the configured host and port and serves the
application tracking REST API, the notification WebSocket channel,
health checks and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		ctr.StartBackground()

		controllers := api.Controllers{
			Health:        api.NewHealthController(ctr.DB(), ctr.Hub()),
			Applications:  api.NewApplicationController(ctr.ApplicationService(), ctr.StatisticsService()),
			Notifications: api.NewNotificationController(ctr.NotificationService()),
			Directory:     api.NewDirectoryController(ctr.DirectoryService()),
			Users:         api.NewUserController(ctr.UserService()),
			Assignments:   api.NewAssignmentController(ctr.AssignmentService()),
		}

		router := api.SetupRoutes(controllers, ctr.Hub(), ctr.Tokens(), cfg)

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		srv := &http.Server{
			Addr:    addr,
			Handler: router,
		}

		go func() {
			logger.WithField("addr", addr).Info("server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Fatal("failed to start server")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Fatal("server forced to shutdown")
		}

		logger.Info("server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().String("config", "", "Config file path (default: config.yaml)")
	serverCmd.Flags().String("host", "0.0.0.0", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
}

// LoadConfig loads the configuration, exported for tests.
func LoadConfig(configPath string) (*config.Config, error) {
	return config.Load(configPath)
}
