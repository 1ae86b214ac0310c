// Package commands holds the command line interface of the application.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-petr/lifemanager/internal/middleware"
	"github.com/go-petr/lifemanager/pkg/configpkg"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lifemanager",
	Short: "Personal finance API with accounts, transfers and two-factor login",
	// Commands print their own errors through the logger.
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./configs", "directory holding app.env")

	rootCmd.AddCommand(serveCmd, migrateCmd, recurringCmd)
}

// app is what every command needs before doing its job.
type app struct {
	config configpkg.Config
	logger zerolog.Logger
	db     *sql.DB
}

func setup() (*app, error) {
	config, err := configpkg.Load(configPath)
	if err != nil {
		log.Error().Err(err).Msg("cannot load config")
		return nil, err
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Error().Err(err).Msg("cannot connect to database")
		return nil, err
	}

	return &app{config: config, logger: logger, db: db}, nil
}

func (a *app) redis(ctx context.Context) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     a.config.RedisAddress,
		Password: a.config.RedisPassword,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		a.logger.Error().Err(err).Str("address", a.config.RedisAddress).Msg("cannot connect to redis")
		return nil, err
	}

	return client, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("cannot close database")
	}
}
