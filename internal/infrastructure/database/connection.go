package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/lib/pq"              // registers the "postgres" driver
	_ "github.com/mattn/go-sqlite3"    // registers the "sqlite3" driver
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
)

// Conn bundles an open database handle with the ent dialect it speaks.
type Conn struct {
	DB      *sql.DB
	Dialect string
	// LogSQL enables debug logging of every statement issued through the store.
	LogSQL bool
}

// Open connects to the SQL store configured in cfg and verifies it with a ping.
func Open(cfg *config.Config, logger *logrus.Logger) (*Conn, func(), error) {
	driver := cfg.DatabaseDriver()
	dsn := cfg.DatabaseURL()
	if dsn == "" {
		return nil, nil, fmt.Errorf("database dsn is required for driver %q", driver)
	}

	switch driver {
	case config.DriverPostgres, config.DriverPgx:
		conn, cleanup, err := openPostgres(driver, dsn, logger)
		if err == nil {
			conn.LogSQL = cfg.Database.LogSQL
		}
		return conn, cleanup, err
	case config.DriverSQLite:
		conn, cleanup, err := openSQLite(dsn, logger)
		if err == nil {
			conn.LogSQL = cfg.Database.LogSQL
		}
		return conn, cleanup, err
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func openPostgres(driver, dsn string, logger *logrus.Logger) (*Conn, func(), error) {
	rawDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping postgres db: %w", err)
	}
	logger.WithField("driver", driver).Debug("connected to postgres")

	return &Conn{DB: rawDB, Dialect: dialect.Postgres}, func() { _ = rawDB.Close() }, nil
}

func openSQLite(dsn string, logger *logrus.Logger) (*Conn, func(), error) {
	rawDB, err := sql.Open(config.DriverSQLite, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	logger.WithField("dsn", dsn).Debug("opened sqlite database")

	return &Conn{DB: rawDB, Dialect: dialect.SQLite}, func() { _ = rawDB.Close() }, nil
}
