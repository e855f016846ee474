package postgres

import (
	"time"

	"github.com/billforge/billforge/internal/config"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// IClient is the narrow database surface the repositories need.
type IClient interface {
	DB() *sqlx.DB
	Close() error
}

type client struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewClient opens a postgres connection pool from the configuration
func NewClient(cfg *config.Configuration, logger *logger.Logger) (IClient, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"database", cfg.Postgres.DBName)

	return &client{db: db, logger: logger}, nil
}

func (c *client) DB() *sqlx.DB {
	return c.db
}

func (c *client) Close() error {
	return c.db.Close()
}
