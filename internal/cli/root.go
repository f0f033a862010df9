// Package cli implements the lembas command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"lembas/internal/api"
	"lembas/internal/app"
	"lembas/internal/config"
	"lembas/internal/database"
	"lembas/internal/logger"
	"lembas/internal/shopping"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// env holds what every command needs. The database is opened on first use.
type env struct {
	cfg    *config.Config
	log    logrus.FieldLogger
	client api.Client
	app    *app.App
	db     *database.DB
}

func (e *env) setup(envFile string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	tokens, err := api.TokenSourceFromConfig(cfg)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.log = log
	e.client = api.NewClient(cfg, tokens, api.WithLogger(log))
	e.app = app.NewApp(e.client, log,
		app.WithWeekStart(cfg.WeekStart),
		app.WithExportStore(exportStore{e}),
		app.WithNotifier(app.NotifierFunc(func(msg string) {
			fmt.Fprintln(os.Stderr, "⚠ "+msg)
		})),
	)
	return nil
}

func (e *env) exports() (*shopping.Repository, error) {
	if e.db == nil {
		db, err := database.NewDB(e.cfg.DatabasePath, e.log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		e.db = db
	}
	return shopping.NewRepository(e.db.SQL), nil
}

func (e *env) close() error {
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

// exportStore opens the database only when a list is actually saved.
type exportStore struct {
	e *env
}

func (s exportStore) Save(ctx context.Context, export *shopping.Export) (int64, error) {
	repo, err := s.e.exports()
	if err != nil {
		return 0, err
	}
	return repo.Save(ctx, export)
}

// NewRootCommand builds the lembas command tree. Configuration is read from the
// environment before any subcommand runs.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&env{})
}

func newRootCommand(e *env) *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "lembas",
		Short:         "Plan meals and build shopping lists",
		Long:          `lembas talks to a Lembas backend to browse recipes, plan the week and export the shopping list it needs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if e.app != nil {
				return nil
			}
			return e.setup(envFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newHealthCommand(e),
		newRecipesCommand(e),
		newScaleCommand(e),
		newImportCommand(e),
		newIngredientsCommand(e),
		newScheduleCommand(e),
		newWeekCommand(e),
		newListCommand(e),
		newDemoCommand(e),
		newExportsCommand(e),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
