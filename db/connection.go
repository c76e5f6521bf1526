package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

func connection(ctx context.Context, database string, readOnly bool) (*sql.DB, error) {
	// Enable foreign keys and WAL mode
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", database)
	if readOnly {
		dsn += "&_pragma=query_only(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	if readOnly {
		db.SetMaxOpenConns(4) // Allow multiple concurrent readers
		db.SetMaxIdleConns(2)
	} else {
		db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
		db.SetMaxIdleConns(1)
	}
	db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
	db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	// The index may be locked by a running writer, retry for a little while
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 100 * time.Millisecond
	retry.MaxInterval = 2 * time.Second
	retry.MaxElapsedTime = 10 * time.Second

	err = backoff.RetryNotify(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(retry, ctx), func(err error, wait time.Duration) {
		log.WithFields(log.Fields{
			"database": database,
			"wait":     wait,
			"error":    err,
		}).Warn("Database not ready, retrying")
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -32000; -- 32MB cache
		PRAGMA temp_store = MEMORY;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	return db, nil
}
