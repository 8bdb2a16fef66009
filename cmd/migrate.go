package cmd

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vetlink-solutions/ms-go-clinic-payments/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration(func(m *migrate.Migrate) error { return m.Up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Run: func(_ *cobra.Command, _ []string) {
		runMigration(func(m *migrate.Migrate) error { return m.Steps(-1) })
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func runMigration(fn func(m *migrate.Migrate) error) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	m, err := migrate.New("file://"+cfg.Migrations.Path, "mysql://"+cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize migrations")
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil {
			logrus.WithError(sourceErr).Warn("Failed to close migration source")
		}
		if dbErr != nil {
			logrus.WithError(dbErr).Warn("Failed to close migration database")
		}
	}()

	if err := fn(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logrus.Info("No migration changes to apply")
			return
		}
		logrus.WithError(err).Fatal("Migration failed")
	}

	logrus.Info("Migrations applied")
}
