package cmd

import (
	"context"

	"github.com/1auto-market/vehiclestore-backend/internal/server"
	"github.com/1auto-market/vehiclestore-backend/internal/services/user"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the administrator configured under admin.* if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email != "" {
			cfg.Admin.Email = email
		}
		if password != "" {
			cfg.Admin.Password = password
		}

		ctx := cmd.Context()
		store, err := server.OpenStore(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(context.Background()) }()

		admin, created, err := user.NewService(store.Repos.Users).SeedAdmin(ctx, cfg.Admin)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"id":      admin.ID.Hex(),
			"email":   admin.Email,
			"created": created,
		}).Info("Admin seeding finished")
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().String("email", "", "admin email (overrides admin.email)")
	seedAdminCmd.Flags().String("password", "", "admin password (overrides admin.password)")
	rootCmd.AddCommand(seedAdminCmd)
}
