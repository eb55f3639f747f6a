// Command seeder loads the sample catalog and accounts into the configured
// store, or wipes it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/mongodb"
	"go.uber.org/zap"
)

// target is the store being seeded
type target struct {
	products catalog.ProductRepository
	users    identity.UserRepository
	purge    func(ctx context.Context) error
	close    func(ctx context.Context) error
}

type cli struct {
	logLevel string
	extra    int
	seed     uint64
	timeout  time.Duration
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
		Use:           "seeder",
		Short:         "Load or remove storefront sample data",
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
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "Give up after this long")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace all data with the sample users and products",
		Args:  cobra.NoArgs,
		RunE:  c.withTarget(c.runImport),
	}
	importCmd.Flags().IntVar(&c.extra, "extra", 0, "Also generate this many fake products")
	importCmd.Flags().Uint64Var(&c.seed, "seed", 0, "Seed for generated products (0 picks a random one)")

	root.AddCommand(
		importCmd,
		&cobra.Command{
			Use:   "destroy",
			Short: "Delete all orders, products and users",
			Args:  cobra.NoArgs,
			RunE: c.withTarget(func(ctx context.Context, t *target) error {
				if err := t.purge(ctx); err != nil {
					return err
				}
				c.log.Info("Data destroyed")
				return nil
			}),
		},
	)
	return root
}

func (c *cli) withTarget(fn func(ctx context.Context, t *target) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
		defer cancel()

		t, err := c.open(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := t.close(context.Background()); err != nil {
				c.log.Warn("Failed to close database", zap.Error(err))
			}
		}()
		return fn(ctx, t)
	}
}

func (c *cli) open(ctx context.Context, cfg *config.Config) (*target, error) {
	if cfg.Database.Driver == config.DriverMongoDB {
		client, err := mongodb.Connect(ctx, &cfg.Database, c.log)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		db := client.Database()
		return &target{
			products: mongodb.NewProductRepository(db),
			users:    mongodb.NewUserRepository(db),
			purge:    client.Purge,
			close:    client.Close,
		}, nil
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &target{
		products: persistence.NewGormProductRepository(db.DB),
		users:    persistence.NewGormUserRepository(db.DB),
		purge:    db.Purge,
		close:    func(context.Context) error { return db.Close() },
	}, nil
}

func (c *cli) runImport(ctx context.Context, t *target) error {
	if err := t.purge(ctx); err != nil {
		return err
	}

	users, err := buildUsers()
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := t.users.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.Username, err)
		}
	}

	products := sampleProducts
	if c.extra > 0 {
		products = append(append([]sampleProduct{}, sampleProducts...), fakeProducts(c.extra, c.seed)...)
	}
	for _, s := range products {
		p, err := buildProduct(s)
		if err != nil {
			return fmt.Errorf("invalid sample product %q: %w", s.details.Name, err)
		}
		if err := t.products.Save(ctx, p); err != nil {
			return fmt.Errorf("failed to save product %q: %w", p.Name, err)
		}
	}

	c.log.Info("Data imported",
		zap.Int("users", len(users)),
		zap.Int("products", len(products)),
	)
	return nil
}
