// Package db provides the PostgreSQL storage backend: the connection pool,
// embedded schema migrations and the repositories implementing the store
// interfaces of the auth, products and files packages.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	// database/sql driver used by the migration runner.
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/config"
	"github.com/user/serverkit-go/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"
	pgForeignKeyViolation  = "23503"
)

// Querier is the subset of *pgxpool.Pool the repositories use. pgxmock's
// pool satisfies it too.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPool establishes the pgx connection pool and verifies it with a ping.
func NewPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(getDSN(cfg))
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}
	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 30 * time.Second

	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(createCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s", cfg.DBName), err)
	}

	logging.FromContext(ctx).Info("database pool ready",
		zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.String("db", cfg.DBName), zap.Int("max_conns", cfg.MaxSize))
	return pool, nil
}

// getDSN builds a URL-style DSN understood by both pgx and lib/pq.
func getDSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// RunMigrations applies every pending embedded migration and returns the
// resulting schema version.
func RunMigrations(ctx context.Context, cfg *config.DatabaseConfig) (uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, apperror.NewMigrationError("failed to open embedded migrations", err)
	}

	sqlDB, err := sql.Open("postgres", getDSN(cfg))
	if err != nil {
		return 0, apperror.NewMigrationError("failed to open migration connection", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return 0, apperror.NewMigrationError("failed to create migration driver", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, apperror.NewMigrationError("failed to create migrator", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logging.FromContext(ctx).Warn("error closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, apperror.NewMigrationError("failed to run migrations", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, apperror.NewMigrationError("failed to read schema version", err)
	}
	if dirty {
		return version, apperror.NewMigrationError(fmt.Sprintf("schema version %d is dirty", version), nil)
	}
	return version, nil
}

// pgCode returns the SQLSTATE of a PostgreSQL error, or "".
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
