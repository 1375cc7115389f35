package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mrlokans/weddingplanner/internal/audit"
	"github.com/mrlokans/weddingplanner/internal/config"
	"github.com/mrlokans/weddingplanner/internal/database"
	dbaudit "github.com/mrlokans/weddingplanner/internal/database/audit"
	"github.com/mrlokans/weddingplanner/internal/entrypoint"
	"github.com/mrlokans/weddingplanner/internal/logging"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the HTTP server.
func NewRootCommand(version, commit string) *cobra.Command {
	var dbPath string

	serve := func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(dbPath)
		return entrypoint.Run(cfg, version)
	}

	root := &cobra.Command{
		Use:   "weddingplanner",
		Short: "Wedding planning backend",
		Long: `weddingplanner serves the planning API, published wedding websites
and the blog. Configuration is read from environment variables.

Run without arguments to start the HTTP server.`,
		SilenceUsage: true,
		RunE:         serve,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides DATABASE_PATH)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		newCreateAdminCommand(&dbPath),
		newGuestsCommand(&dbPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "weddingplanner %s (commit %s)\n", version, commit)
			},
		},
	)
	return root
}

func loadConfig(dbPath string) *config.Config {
	cfg := config.NewConfig()
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg
}

// env is what the maintenance commands share: the database and an audit trail.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.Database
	events *audit.Service
}

func openEnv(cmd *cobra.Command, dbPath string) (*env, error) {
	cfg := loadConfig(dbPath)
	logger := logging.New(cmd.ErrOrStderr(), cfg.Log)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{
		cfg:    cfg,
		logger: logger,
		db:     db,
		events: audit.NewService(dbaudit.NewRepository(db.DB), logger),
	}, nil
}

// Close flushes pending audit events before closing the database.
func (e *env) Close() {
	e.events.Wait()
	if err := e.db.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}
