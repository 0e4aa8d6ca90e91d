package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"io"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	headlessadmin "github.com/Priya-159/headless-admin"
	"github.com/Priya-159/headless-admin/caches"
)

var (
	// ErrPingFailed is returned if the initial ping to the database returns an error
	ErrPingFailed = errors.New("ping returned error")
)

var (
	//go:embed create_table.sql
	queryCreateTable string
	//go:embed delete_expired.sql
	queryDeleteExpired string
	//go:embed delete_segment.sql
	queryDeleteSegment string
	//go:embed fetch_by_key.sql
	queryFetchByKey string
	//go:embed insert_entry.sql
	queryInsertEntry string
)

// Config defines the configuration options for the PostgreSQL cache implementation.
type Config struct {
	// DeleteExpiredEntries enables automatic cleanup of expired cache rows
	// through a background task.
	DeleteExpiredEntries bool

	// SweepInterval defines the interval at which the cleanup task runs.
	// Shorter durations may impact database performance.
	SweepInterval time.Duration

	// Retention defines how long rows remain in the database. This is
	// separate from the client-side TTL, which is enforced on read.
	Retention time.Duration
}

// Cache implements the headlessadmin.Cache interface using PostgreSQL as the
// storage backend, so cached reads survive process restarts and are shared
// between console instances.
type Cache struct {
	db *sql.DB

	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// Get retrieves a cache entry by its key. Rows past their retention window
// are treated as missing.
func (p *Cache) Get(ctx context.Context, key string) (*headlessadmin.Entry, error) {
	stmt, err := p.db.PrepareContext(ctx, queryFetchByKey)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var data []byte
	var createdAt time.Time
	row := stmt.QueryRowContext(ctx, key, p.now().UTC())
	if err := row.Scan(&data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, caches.ErrNoEntry
		}
		return nil, err
	}

	return &headlessadmin.Entry{Data: data, Timestamp: createdAt}, nil
}

// Set upserts a cache entry under the given key.
func (p *Cache) Set(ctx context.Context, key string, e *headlessadmin.Entry) error {
	stmt, err := p.db.PrepareContext(ctx, queryInsertEntry)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		key,
		headlessadmin.Segment(key),
		[]byte(e.Data),
		e.Timestamp.UTC(),
		p.now().UTC().Add(p.retention),
	)
	return err
}

// Invalidate deletes every row stored under the given resource segment.
func (p *Cache) Invalidate(ctx context.Context, segment string) error {
	stmt, err := p.db.PrepareContext(ctx, queryDeleteSegment)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, segment)
	return err
}

func createTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, queryCreateTable)
	return err
}

func deleteExpiredEntries(ctx context.Context, db *sql.DB, now time.Time) error {
	stmt, err := db.PrepareContext(ctx, queryDeleteExpired)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, now)
	return err
}

func (p *Cache) sweepTask(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := deleteExpiredEntries(ctx, p.db, p.now().UTC()); err != nil {
				p.logger.WarnContext(ctx, "expired entry sweep failed", "error", err)
			}
		}
	}
}

// New creates a new PostgreSQL cache instance with the provided configuration.
// It verifies the database connection, creates the table structure, and
// optionally starts the cleanup task for expired rows.
func New(ctx context.Context, db *sql.DB, config *Config, logger *slog.Logger) (*Cache, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(ErrPingFailed, err)
	}

	if err := createTable(ctx, db); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Cache{
		db: db,

		retention: caches.DefaultRetention,
		logger:    logger,
		now:       time.Now,
	}

	if config != nil {
		if config.Retention > 0 {
			c.retention = config.Retention
		}
		if config.DeleteExpiredEntries {
			interval := config.SweepInterval
			if interval <= 0 {
				interval = caches.DefaultSweepInterval
			}
			go c.sweepTask(ctx, interval)
		}
	}

	return c, nil
}
