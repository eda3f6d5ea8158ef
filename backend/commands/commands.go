// Package commands is the operator CLI: the HTTP server plus the schema,
// seed and inspection commands that never go over the network.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cards-app/backend/auth"
	"cards-app/backend/config"
	"cards-app/backend/database"
	"cards-app/backend/logger"
	"cards-app/backend/server"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// NewRootCmd builds the command tree. Configuration is loaded once before
// any subcommand runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cards-app",
		Short:         "Card board API and maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			slog.SetDefault(slog.New(logger.NewHandler(cmd.ErrOrStderr(), config.C.LogLevel(), nil)))
			return nil
		},
	}

	root.AddCommand(
		serveCmd(),
		dbCmd("create", "Create the users and cards tables", createTables),
		dbCmd("drop", "Drop the users and cards tables", dropTables),
		dbCmd("seed", "Insert the sample users and cards", seedTables),
		dbCmd("all_cards", "Print every card's title and priority", allCards),
		dbCmd("first_card", "Print the first card", firstCard),
		dbCmd("count_ongoing", "Print how many cards are Ongoing", countOngoing),
	)
	return root
}

func openDB() (*gorm.DB, func(), error) {
	db, err := database.Open(config.C.Database.Driver, config.C.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return db, closeFn, nil
}

// dbCmd wraps a no-argument action that needs an open database.
func dbCmd(use, short string, run func(cmd *cobra.Command, db *gorm.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()
			if err := run(cmd, db); err != nil {
				slog.Error("command failed", "source", "cli", "command", use, "error", err.Error())
				return err
			}
			return nil
		},
	}
}

func createTables(cmd *cobra.Command, db *gorm.DB) error {
	if err := database.CreateTables(db); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tables created")
	return nil
}

func dropTables(cmd *cobra.Command, db *gorm.DB) error {
	if err := database.DropTables(db); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tables dropped")
	return nil
}

func seedTables(cmd *cobra.Command, db *gorm.DB) error {
	if err := database.Seed(cmd.Context(), db, auth.BcryptHasher{}, time.Now()); err != nil {
		return fmt.Errorf("seed tables: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tables seeded")
	return nil
}

func allCards(cmd *cobra.Command, db *gorm.DB) error {
	cards, err := database.NewStore(db).AllCards(cmd.Context())
	if err != nil {
		return err
	}
	for _, c := range cards {
		fmt.Fprintln(cmd.OutOrStdout(), c.Title, c.Priority)
	}
	return nil
}

func firstCard(cmd *cobra.Command, db *gorm.DB) error {
	card, err := database.NewStore(db).FirstCard(cmd.Context())
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "no cards")
		return nil
	}
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func countOngoing(cmd *cobra.Command, db *gorm.DB) error {
	n, err := database.NewStore(db).CountCardsByStatus(cmd.Context(), "Ongoing")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.C
			if err := cfg.Validate(); err != nil {
				return err
			}

			db, closeDB, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Logs.Persist {
				if err := database.MigrateLogs(db); err != nil {
					return fmt.Errorf("migrate log table: %w", err)
				}
				slog.SetDefault(slog.New(logger.NewHandler(os.Stdout, cfg.LogLevel(), db)))
				go logger.CleanupOldLogs(ctx, db, cfg.Logs.Retention, time.Hour)
			}

			return server.Run(ctx, cfg, db)
		},
	}
}

// Execute runs the CLI against os.Args.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}
