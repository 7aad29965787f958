/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"log"

	"github.com/miftajuneidi2008/ansar-dfp/internal/api"
	"github.com/miftajuneidi2008/ansar-dfp/internal/config"
	"github.com/miftajuneidi2008/ansar-dfp/internal/container"
	"github.com/miftajuneidi2008/ansar-dfp/internal/model"
	"github.com/miftajuneidi2008/ansar-dfp/internal/service"
	"github.com/spf13/cobra"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the initial system administrator",
	Long: `Create the first system administrator account.
The command refuses to run once any administrator exists, so it is safe
to include in provisioning scripts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")

		logger, err := api.NewLoggerFromConfig(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctr, err := container.NewContainer(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		defer ctr.Close()

		admin, err := ctr.UserService().Bootstrap(cmd.Context(), &service.CreateUserRequest{
			Email:    email,
			FullName: name,
			Password: password,
			Role:     model.RoleSystemAdmin,
		})
		if err != nil {
			return fmt.Errorf("failed to create administrator: %w", err)
		}

		log.Printf("Administrator %s created (id %s)", admin.Email, admin.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("config", "", "Config file path")
	seedCmd.Flags().String("email", "", "Administrator email")
	seedCmd.Flags().String("name", "System Administrator", "Administrator full name")
	seedCmd.Flags().String("password", "", "Administrator password")
	seedCmd.MarkFlagRequired("email")
	seedCmd.MarkFlagRequired("password")
}
