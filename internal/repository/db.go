package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/docextract/internal/common"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultSQLiteDSN is used when the sqlite driver is picked without a DSN.
	DefaultSQLiteDSN = "file:docextract.db?_pragma=busy_timeout(5000)"
	// MemorySQLiteDSN is a shared in-memory database; it lives as long as the DB stays open.
	MemorySQLiteDSN = "file:docextract?mode=memory&cache=shared"
)

type Config struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the application database settings onto a repository Config.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		Driver:           c.Driver,
		DSN:              c.DSN,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// DB bundles the ent SQL driver with whatever owns the underlying connections.
type DB struct {
	Driver  *entsql.Driver
	Dialect string

	sqlDB *sql.DB
	pool  *pgxpool.Pool
}

// Open connects to the configured database and wraps it for the ent SQL builders.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case DriverSQLite:
		return openSQLite(ctx, cfg, logger)
	case DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case "":
		return nil, common.NewAppError(common.CodeConfig, "database driver is not configured (set database.driver)", common.ErrInvalidInput)
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unsupported database driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	logger.Info("connecting to database", "driver", DriverSQLite, "dsn", dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, dbErr("open sqlite", err)
	}
	// sqlite serialises writers; one connection also keeps a shared in-memory db alive
	db.SetMaxOpenConns(1)

	pingCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, dbErr("ping sqlite", err)
	}

	logger.Info("successfully connected to database")
	return &DB{Driver: entsql.OpenDB(dialect.SQLite, db), Dialect: dialect.SQLite, sqlDB: db}, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "driver", DriverPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, dbErr("parse postgres dsn", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "docextract"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, dbErr("connect postgres", err)
	}

	// Wrap pool as *sql.DB for the ent driver
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{Driver: entsql.OpenDB(dialect.Postgres, db), Dialect: dialect.Postgres, sqlDB: db, pool: pool}, nil
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if d == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing database connections")
	if d.Driver != nil {
		if err := d.Driver.Close(); err != nil {
			logger.Error("failed to close database driver", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database within timeout.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("pinging database", "dialect", d.Dialect)
	var err error
	if d.pool != nil {
		err = d.pool.Ping(ctx)
	} else {
		err = d.sqlDB.PingContext(ctx)
	}
	if err != nil {
		logger.Error("database ping failed", "error", err)
		return dbErr("ping", err)
	}
	logger.Debug("database ping successful")
	return nil
}

func dbErr(msg string, err error) error {
	return common.NewAppError(common.CodeDatabase, msg, fmt.Errorf("%w: %w", common.ErrDatabase, err))
}
