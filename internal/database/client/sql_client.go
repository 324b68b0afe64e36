package client

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"packetlog/config"
	"packetlog/internal/core"
	"packetlog/internal/database/sql/dialect"

	"go.uber.org/zap"
)

// SQLClient owns the connection pool shared by every request.
type SQLClient struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// NewSQLClient opens the pool for the configured driver and verifies it with
// a ping. The returned cleanup closes the pool.
func NewSQLClient(logger *zap.Logger, conf *config.Configuration) (*SQLClient, func(), error) {
	d, err := dialect.For(core.DatabaseDriver(conf.Database.Driver))
	if err != nil {
		return nil, nil, err
	}
	db, err := Open(d, conf.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if conf.Database.MaxOpenConns > 0 && d.Name() != core.DriverSQLite {
		db.SetMaxOpenConns(conf.Database.MaxOpenConns)
	}
	if conf.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(conf.Database.MaxIdleConns)
	}
	if conf.Database.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(conf.Database.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", d.Name(), err)
	}
	logger.Info("database connected", zap.String("driver", string(d.Name())))

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("database close failed", zap.Error(err))
			return
		}
		logger.Info("database connection closed")
	}
	return &SQLClient{db: db, dialect: d}, cleanup, nil
}

// Open opens a pool without pinging it.
func Open(d dialect.Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name(), err)
	}
	if d.Name() == core.DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewSQLClientFromDB wraps an existing pool.
func NewSQLClientFromDB(db *sql.DB, d dialect.Dialect) *SQLClient {
	return &SQLClient{db: db, dialect: d}
}

func (c *SQLClient) DB() *sql.DB              { return c.db }
func (c *SQLClient) Dialect() dialect.Dialect { return c.dialect }
