// This is the main entry point of the serverkit application.
// It loads configuration, selects the storage backends, wires the services
// into the HTTP server and handles graceful shutdown. A few maintenance
// commands (migrations, password hashing, role promotion) share the same
// configuration.
//
// @title Serverkit API
// @version 1.0
// @description Bearer-token authenticated CRUD API with file uploads.
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/background"
	"github.com/user/serverkit-go/config"
	"github.com/user/serverkit-go/db"
	"github.com/user/serverkit-go/files"
	"github.com/user/serverkit-go/logging"
	"github.com/user/serverkit-go/memstore"
	"github.com/user/serverkit-go/metrics"
	"github.com/user/serverkit-go/products"
	"github.com/user/serverkit-go/ratelimit"
	"github.com/user/serverkit-go/server"
)

const serviceName = "serverkit"

func main() {
	// .env is a development convenience; in production variables are set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: error loading .env: %v", err)
	}

	app := &cli.App{
		Name:   serviceName,
		Usage:  "authenticated CRUD API with file uploads",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending PostgreSQL migrations and exit",
				Action: migrateCmd,
			},
			{
				Name:      "hash-password",
				Usage:     "print the bcrypt hash of a password",
				ArgsUsage: "<password>",
				Action:    hashPasswordCmd,
			},
			{
				Name:  "promote",
				Usage: "grant the admin role to an existing user (postgres driver only)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "email of the user to promote", Required: true},
					&cli.StringFlag{Name: "role", Usage: "role to assign", Value: string(auth.RoleAdmin)},
				},
				Action: promoteCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap loads the configuration and builds the root logger.
func bootstrap() (*config.AppConfig, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log, serviceName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}

// stores holds the metadata stores of the selected driver.
type stores struct {
	users    auth.UserStore
	products products.ProductStore
	files    files.FileStore
	close    func()
}

func openStores(ctx context.Context, cfg *config.AppConfig) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return &stores{
			users:    memstore.NewUsers(),
			products: memstore.NewProducts(),
			files:    memstore.NewFiles(),
			close:    func() {},
		}, nil
	}

	version, err := db.RunMigrations(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("database schema up to date", zap.Uint("version", version))

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &stores{
		users:    db.NewUserRepository(pool),
		products: db.NewProductRepository(pool),
		files:    db.NewFileRepository(pool),
		close:    pool.Close,
	}, nil
}

func openBlobs(ctx context.Context, cfg *config.AppConfig) (files.BlobStore, error) {
	if cfg.Upload.Backend == config.UploadBackendMinio {
		store, err := files.NewMinioStore(cfg.Minio)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return files.NewDiskStore(cfg.Upload.Dir)
}

func serve(_ *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithContext(ctx, logger)
	started := time.Now()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		return err
	}

	limiter, err := ratelimit.New(ctx, cfg.RateLimit)
	if err != nil {
		return err
	}
	defer func() {
		if err := limiter.Close(); err != nil {
			logger.Warn("failed to close rate limiter store", zap.Error(err))
		}
	}()

	m := metrics.New(serviceName)
	srv := server.New(server.Deps{
		Config:   cfg,
		Logger:   logger,
		Users:    st.users,
		Products: st.products,
		Files:    st.files,
		Blobs:    blobs,
		Metrics:  m,
		Limiter:  limiter,
	})

	if cfg.SeedDemoUsers {
		if err := srv.SeedDemo(ctx, st.products); err != nil {
			return err
		}
	}

	// The sweeper stops when ctx is cancelled by the shutdown signal.
	sweepOpts := []background.SweeperOption{background.WithObserver(m)}
	if cfg.StorageDriver == config.StorageMemory {
		// In-memory metadata starts empty, so blobs from earlier runs are unknown, not orphaned.
		logger.Info("orphan sweep limited to blobs written by this process", zap.Time("since", started))
		sweepOpts = append(sweepOpts, background.WithIndexedSince(started))
	}
	sweeper := background.NewSweeper(blobs, st.files, cfg.Upload.OrphanSweepInterval, cfg.Upload.OrphanGracePeriod, sweepOpts...)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("storage", cfg.StorageDriver), zap.String("uploads", cfg.Upload.Backend))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	wg.Wait()
	logger.Info("server stopped gracefully")
	return nil
}

func migrateCmd(_ *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.StoragePostgres)
	}
	ctx := logging.WithContext(context.Background(), logger)
	version, err := db.RunMigrations(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", zap.Uint("version", version))
	return nil
}

func hashPasswordCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: hash-password <password>", 2)
	}
	cost := 10
	if cfg, err := config.LoadConfig(); err == nil {
		cost = cfg.Auth.BcryptCost
	}
	hash, err := auth.NewPasswordVerifier(cost).Hash(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func promoteCmd(c *cli.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return fmt.Errorf("promote requires STORAGE_DRIVER=%s; the memory store does not outlive the server", config.StoragePostgres)
	}
	ctx := logging.WithContext(c.Context, logger)

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifetime)
	svc := auth.NewAuthService(db.NewUserRepository(pool), auth.NewPasswordVerifier(cfg.Auth.BcryptCost), tokens)
	email := c.String("email")
	role := auth.Role(c.String("role"))
	if err := svc.AssignRole(ctx, email, role); err != nil {
		return err
	}
	logger.Info("role assigned", zap.String("email", email), zap.String("role", string(role)))
	return nil
}
