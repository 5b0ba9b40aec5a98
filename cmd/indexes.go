package cmd

import (
	"context"
	"errors"

	"github.com/1auto-market/vehiclestore-backend/internal/database"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB collection indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Mongo.URI == "" {
			return errors.New("mongo.uri (MONGO_URI) is required")
		}

		ctx := cmd.Context()
		db, err := database.Init(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = database.Shutdown(context.Background()) }()

		if err := database.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		logrus.Info("All indexes created successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
