package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BloggingApp/comment-service/internal/config"
	"github.com/BloggingApp/comment-service/internal/repository/postgres"
	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := config.LoadEnv(); err != nil {
		logger.Sugar().Fatalf("failed to load environment variables: %s", err.Error())
	}

	dbConfig := config.Load().DB
	logger.Sugar().Infof("connecting to %s@%s:%s/%s", dbConfig.Username, dbConfig.Host, dbConfig.Port, dbConfig.DBName)

	m, err := postgres.NewMigrate(dbConfig.DSN())
	if err != nil {
		logger.Sugar().Fatalf("failed to initialize migrations: %s", err.Error())
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Sugar().Errorf("failed to close migrations: %v, %v", sourceErr, dbErr)
		}
	}()

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Sugar().Fatalf("failed to apply migrations: %s", err.Error())
		} else if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no change: database is up to date")
		} else {
			logger.Info("migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			logger.Sugar().Fatalf("failed to roll back the last migration: %s", err.Error())
		}
		logger.Info("last migration rolled back")

	case "goto":
		if len(os.Args) < 3 {
			logger.Fatal("version number is required")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			logger.Sugar().Fatalf("invalid version number: %s", err.Error())
		}

		if err := m.Migrate(uint(version)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Sugar().Fatalf("failed to migrate to version %d: %s", version, err.Error())
		}
		logger.Sugar().Infof("database is at version %d", version)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info("no migrations applied yet")
				return
			}
			logger.Sugar().Fatalf("failed to read migration version: %s", err.Error())
		}
		logger.Sugar().Infof("current version: %d (dirty: %t)", version, dirty)

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("usage: migrate <command>")
	fmt.Println("commands:")
	fmt.Println("  up        apply all pending migrations")
	fmt.Println("  down      roll back the last migration")
	fmt.Println("  goto N    migrate to version N")
	fmt.Println("  version   print the current version")
}
