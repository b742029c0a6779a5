// Package store is the Postgres storage layer: the videos and
// video_snapshots tables, the fixed read aggregates the dispatcher is
// allowed to issue, bulk ingestion, and the context document collection
// used for prompt retrieval.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres connection settings.
type Config struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// ConfigFromEnv reads connection settings from the environment with the
// same defaults the original deployment used.
func ConfigFromEnv() Config {
	return Config{
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envOr("DB_PORT", "5432"),
		Database: envOr("DB_NAME", "video_analytics"),
		User:     envOr("DB_USER", "postgres"),
		Password: envOr("DB_PASSWORD", "postgres"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// DSN returns the pgx connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// Store wraps the connection pool. Concurrent use is safe: each query
// checks out its own connection from the pool.
type Store struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// Connect establishes the pool and verifies connectivity, retrying the
// ping with exponential backoff. Failure here is startup-fatal for the
// service.
func Connect(ctx context.Context, log *slog.Logger, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err = backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			log.Warn("postgres ping failed, retrying", "host", cfg.Host, "error", err)
			return err
		}
		return nil
	}, bo)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info("connected to postgres", "host", cfg.Host, "database", cfg.Database)
	return &Store{pool: pool, log: log}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// queryScalar runs a single-row, single-column aggregate and returns its
// value. An absent row or NULL normalizes to 0: that is the documented
// answer for empty aggregates, not a storage default.
func (s *Store) queryScalar(ctx context.Context, sql string, args ...any) (int64, error) {
	var val *int64
	err := s.pool.QueryRow(ctx, sql, args...).Scan(&val)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if val == nil {
		return 0, nil
	}
	return *val, nil
}

// TotalVideos counts all video records.
func (s *Store) TotalVideos(ctx context.Context) (int64, error) {
	return s.queryScalar(ctx, `SELECT COUNT(*) FROM videos`)
}

// CreatorVideosInRange counts a creator's videos published between start
// and end, both bounds inclusive, by calendar day.
func (s *Store) CreatorVideosInRange(ctx context.Context, creatorID string, start, end time.Time) (int64, error) {
	return s.queryScalar(ctx, `
		SELECT COUNT(*)
		FROM videos
		WHERE creator_id = $1
		  AND video_created_at::date BETWEEN $2::date AND $3::date`,
		creatorID, start, end)
}

// VideosWithViewsOver counts videos whose view count strictly exceeds
// threshold.
func (s *Store) VideosWithViewsOver(ctx context.Context, threshold int64) (int64, error) {
	return s.queryScalar(ctx, `SELECT COUNT(*) FROM videos WHERE views_count > $1`, threshold)
}

// ViewsGrowthOnDate sums the per-snapshot view deltas across the whole
// given day.
func (s *Store) ViewsGrowthOnDate(ctx context.Context, day time.Time) (int64, error) {
	return s.queryScalar(ctx, `
		SELECT COALESCE(SUM(delta_views_count), 0)
		FROM video_snapshots
		WHERE created_at::date = $1::date`,
		day)
}

// VideosWithNewViewsOnDate counts distinct videos with a strictly
// positive view delta on the given day.
func (s *Store) VideosWithNewViewsOnDate(ctx context.Context, day time.Time) (int64, error) {
	return s.queryScalar(ctx, `
		SELECT COUNT(DISTINCT video_id)
		FROM video_snapshots
		WHERE created_at::date = $1::date
		  AND delta_views_count > 0`,
		day)
}

// QueryScalarRaw executes a caller-supplied read query expected to return
// one scalar. Used only by the guarded direct-SQL fallback; the guard in
// package sqlgen must run before this.
func (s *Store) QueryScalarRaw(ctx context.Context, sql string) (int64, error) {
	return s.queryScalar(ctx, sql)
}
