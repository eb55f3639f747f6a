// Command migrate manages the postgres schema of the storefront.
// Migrations are embedded in the binary; -path switches to a directory on
// disk, which is also where "create" writes new files.
package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/storefront/backend/migrations"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

type cli struct {
	path     string
	logLevel string
	log      *zap.Logger
}

func main() {
	c := &cli{}
	if err := c.rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Storefront database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(&logger.Config{
				Level:      c.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = logger.Sync(c.log)
			}
		},
	}
	root.PersistentFlags().StringVar(&c.path, "path", "", "Read migrations from this directory instead of the embedded set")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: c.withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Up()
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: c.withMigrator(func(m *migration.Migrator, _ []string) error {
				return m.Down()
			}),
		},
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations, or roll back when n is negative",
			Args:  cobra.ExactArgs(1),
			RunE: c.withMigrator(func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a version",
			Args:  cobra.ExactArgs(1),
			RunE: c.withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a version as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: c.withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied version and pending migrations",
			Args:  cobra.NoArgs,
			RunE: c.withMigrator(func(m *migration.Migrator, _ []string) error {
				available, err := migration.AvailableVersions(c.source())
				if err != nil {
					return err
				}
				st, err := m.Status(available)
				if err != nil {
					return err
				}
				c.log.Info("Migration status",
					zap.Uint("version", st.Version),
					zap.Uint("latest", st.Latest),
					zap.Int("pending", st.Pending),
					zap.Bool("dirty", st.Dirty),
				)
				if st.Dirty {
					c.log.Warn("Schema is dirty; fix the failed migration and run force <version>")
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List available migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := migration.ListMigrations(c.source())
				if err != nil {
					return err
				}
				for _, m := range list {
					down := ""
					if !m.HasDown {
						down = " (no down)"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%06d  %s%s\n", m.Version, m.Name, down)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "create <name> [description]",
			Short: "Create an empty up/down migration pair",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				dir := c.path
				if dir == "" {
					dir = defaultMigrationsDir
				}
				description := ""
				if len(args) > 1 {
					description = args[1]
				}
				mf, err := migration.CreateMigration(dir, args[0], description)
				if err != nil {
					return err
				}
				c.log.Info("Migration created",
					zap.Uint("version", mf.Version),
					zap.String("up_file", mf.UpPath),
					zap.String("down_file", mf.DownPath),
				)
				return nil
			},
		},
	)
	return root
}

func (c *cli) source() fs.FS {
	if c.path != "" {
		return os.DirFS(c.path)
	}
	return migrations.FS
}

func (c *cli) withMigrator(fn func(*migration.Migrator, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Database.Driver != config.DriverPostgres {
			c.log.Warn("Configured driver does not use SQL migrations; running against postgres settings anyway",
				zap.String("driver", cfg.Database.Driver))
		}

		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		m, err := migration.New(db, c.source(), c.log)
		if err != nil {
			return err
		}
		defer m.Close()

		return fn(m, args)
	}
}
