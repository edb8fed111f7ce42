// Command migrate manages the database schema.
//
//	migrate up                 apply all pending migrations
//	migrate down               roll back everything
//	migrate steps -2           roll back two migrations
//	migrate goto 4             move to version 4
//	migrate version            print the current version
//	migrate force 3            mark version 3 as applied after a failed run
//	migrate create add_notes   scaffold a new up/down pair in --dir
//	migrate list               list known migrations
package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/bizdesk/backend/internal/infrastructure/logger"
	"github.com/bizdesk/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	dir         string
	logLevel    string
	databaseURL string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the BizDesk database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "migrations directory (default: migrations embedded in the binary)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "postgres URL (default: built from configuration)")

	root.AddCommand(
		migrateCmd(opts, "up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Up() }),
		migrateCmd(opts, "down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Down() }),
		migrateCmd(opts, "steps N", "Apply N migrations, negative N rolls back", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return fmt.Errorf("steps must be a non-zero integer, got %q", args[0])
				}
				return m.Steps(n)
			}),
		migrateCmd(opts, "goto VERSION", "Migrate up or down to VERSION", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		migrateCmd(opts, "force VERSION", "Set the version without running migrations", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		migrateCmd(opts, "version", "Print the current schema version", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if dirty {
					fmt.Printf("%d (dirty)\n", v)
					return nil
				}
				fmt.Println(v)
				return nil
			}),
		createCmd(opts),
		listCmd(opts),
	)
	return root
}

// migrateCmd builds a subcommand that needs a database connection
func migrateCmd(opts *options, use, short string, args cobra.PositionalArgs,
	run func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, a []string) error {
			log, err := logger.New(logger.Config{Level: opts.logLevel, Format: "console", Output: "stdout"})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			url := opts.databaseURL
			if url == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load configuration: %w", err)
				}
				url = cfg.Database.DSN()
			}

			db, err := sql.Open("postgres", url)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := db.PingContext(cmd.Context()); err != nil {
				_ = db.Close()
				return fmt.Errorf("connect to database: %w", err)
			}

			// the migrator owns db from here on
			m, err := migration.New(db, opts.dir, log)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer func() {
				if err := m.Close(); err != nil {
					log.Warn("Closing migrator", zap.Error(err))
				}
			}()
			return run(m, a)
		},
	}
}

func createCmd(opts *options) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Scaffold a new migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if dir == "" {
				dir = "internal/infrastructure/migration/sql"
			}
			e, err := migration.Create(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Println(e.UpPath)
			fmt.Println(e.DownPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "comment written at the top of the up file")
	return cmd
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				entries []migration.Entry
				err     error
			)
			if opts.dir == "" {
				entries, err = migration.Embedded()
			} else {
				entries, err = migration.List(os.DirFS(opts.dir))
			}
			if err != nil {
				return err
			}
			for _, e := range entries {
				down := ""
				if !e.HasDown {
					down = "  (no down)"
				}
				fmt.Printf("%s%s\n", e.BaseName(), down)
			}
			return nil
		},
	}
}
